package seal

import (
	"encoding/json"
	"fmt"

	"aegis/internal/domain"
)

// MarshalObject renders the object as indented JSON for files and
// transfer. Hashing never runs over this form.
func MarshalObject(obj domain.ZTDFObject) ([]byte, error) {
	return json.MarshalIndent(obj, "", "  ")
}

func UnmarshalObject(data []byte) (domain.ZTDFObject, error) {
	var obj domain.ZTDFObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return domain.ZTDFObject{}, fmt.Errorf("parse object: %w", err)
	}
	return obj, nil
}
