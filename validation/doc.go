// Package validation checks operator option structs against their
// validate tags, reporting violations as structured INVALID_CONFIG
// errors.
//
// Fields are named by their json tag in messages and details, so a
// violation on a Size field tagged json:"batch_size" reads
// "batch_size must be greater than 0".
//
// # Usage
//
//	type batchConfig struct {
//	    Size int `json:"batch_size" validate:"gt=0"`
//	}
//	if err := validation.Validate(&batchConfig{Size: size}); err != nil {
//	    return err
//	}
package validation
