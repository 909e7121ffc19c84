package models

import "encoding/json"

// EncodeGarmentIDs serializes a garment id list into the single text column
// stored on the outfit row.
func EncodeGarmentIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeGarmentIDs parses the serialized garment id list. A malformed
// encoding is treated as "no garments" rather than an error; the outfit's
// rating then converges to 0 on the next recomputation.
func DecodeGarmentIDs(encoded string) []string {
	if encoded == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(encoded), &ids); err != nil {
		return nil
	}
	return ids
}
