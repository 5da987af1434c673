package jsonblob

import "encoding/base64"

// Revive walks a decoded JSON tree and converts every tagged binary object
// into a Blob. Maps and slices are rewritten in place.
func Revive(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		if blob, ok := reviveTagged(val); ok {
			return blob
		}
		for key, child := range val {
			val[key] = Revive(child)
		}
		return val
	case []interface{}:
		for i, child := range val {
			val[i] = Revive(child)
		}
		return val
	default:
		return v
	}
}

func reviveTagged(obj map[string]interface{}) (Blob, bool) {
	typ, _ := obj["type"].(string)
	buffer, _ := obj["buffer"].(bool)
	if typ != TypeTag && !buffer {
		return nil, false
	}

	payload, ok := obj["data"]
	if !ok || payload == nil {
		payload = obj["value"]
	}

	switch data := payload.(type) {
	case string:
		raw, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, false
		}
		return Blob(raw), true
	case []interface{}:
		raw := make([]byte, len(data))
		for i, n := range data {
			num, ok := n.(float64)
			if !ok || num < 0 || num > 255 {
				return nil, false
			}
			raw[i] = byte(num)
		}
		return Blob(raw), true
	case nil:
		return Blob{}, true
	}
	return nil, false
}
