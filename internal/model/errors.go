package model

import "errors"

// Error taxonomy shared by the registry, state store, and engine.
var (
	ErrNotFound   = errors.New("not found")            // file absent
	ErrParse      = errors.New("parse failure")        // malformed document
	ErrStructural = errors.New("structural failure")   // required field or shape missing
	ErrValidation = errors.New("validation failure")   // enum or range violation
	ErrIO         = errors.New("write failure")
)
