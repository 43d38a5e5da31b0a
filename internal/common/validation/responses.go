package validation

// Response shapes the workflow relies on. Only fields that later steps read
// are required; anything else the backend sends is allowed.

var idField = Schema{"type": "string", "minLength": 1}

var refField = Schema{
	"anyOf": []interface{}{
		Schema{"type": "string"},
		Schema{"type": "null"},
		Schema{"type": "object", "required": []interface{}{"_id"}},
	},
}

func entity(required []string, properties Schema) Schema {
	props := Schema{"_id": idField}
	for k, v := range properties {
		props[k] = v
	}
	req := []interface{}{"_id"}
	for _, r := range required {
		req = append(req, r)
	}
	return Schema{"type": "object", "required": req, "properties": props}
}

// Envelope wraps an entity schema in {success:true, <key>: ...}.
func Envelope(key string, body Schema) Schema {
	return Schema{
		"type":     "object",
		"required": []interface{}{"success", key},
		"properties": Schema{
			"success": Schema{"enum": []interface{}{true}},
			key:       body,
		},
	}
}

func ListOf(item Schema) Schema {
	return Schema{"type": "array", "items": item}
}

var (
	LoginResponse = Schema{
		"type":     "object",
		"required": []interface{}{"success", "token", "user"},
		"properties": Schema{
			"success": Schema{"enum": []interface{}{true}},
			"token":   Schema{"type": "string", "minLength": 1},
			"user":    entity(nil, nil),
		},
	}

	Category = entity([]string{"name"}, Schema{"name": Schema{"type": "string"}})

	Product = entity([]string{"name", "price"}, Schema{
		"name":           Schema{"type": "string"},
		"price":          Schema{"type": "number"},
		"discount":       Schema{"type": "number"},
		"warehouseStock": Schema{"type": "integer", "minimum": 0},
		"category":       refField,
	})

	User = entity(nil, Schema{"email": Schema{"type": "string"}})

	Franchise = entity([]string{"name"}, Schema{
		"name":    Schema{"type": "string"},
		"manager": refField,
	})

	Address = entity(nil, nil)

	Order = entity([]string{"subtotalAmount", "deliveryCharge", "totalAmount"}, Schema{
		"subtotalAmount": Schema{"type": "number"},
		"deliveryCharge": Schema{"type": "number"},
		"totalAmount":    Schema{"type": "number"},
		"deliveryStatus": Schema{"type": "string"},
		"paymentStatus":  Schema{"type": "string"},
		"product":        refField,
		"address":        refField,
		"franchise":      refField,
	})

	FranchiseStats = Schema{
		"type":     "object",
		"required": []interface{}{"totalOrders"},
		"properties": Schema{
			"totalOrders":  Schema{"type": "integer", "minimum": 0},
			"totalRevenue": Schema{"type": "number"},
		},
	}
)
