// LED Widgets
// Copyright (c) 2025 The LED Widgets Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of LED Widgets.
//
// LED Widgets is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// LED Widgets is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with LED Widgets.  If not, see <http://www.gnu.org/licenses/>.

// Package validation validates config values and device payloads using
// go-playground/validator with a few display-specific tags.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Common validation errors.
var (
	ErrMissingParams = errors.New("missing params")
	ErrInvalidParams = errors.New("invalid params")
)

var rgbaColorRe = regexp.MustCompile(`^#([0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Validator wraps a configured validator.Validate.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator with registered custom validators.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("duration", validateDuration)
	_ = v.RegisterValidation("rgbacolor", validateRGBAColor)
	_ = v.RegisterValidation("encoding", validateEncoding)

	return &Validator{validate: v}
}

// DefaultValidator is a shared validator instance.
var DefaultValidator = NewValidator()

// Validate validates a struct and returns an *Error if validation fails.
func (v *Validator) Validate(params any) error {
	if err := v.validate.Struct(params); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewError(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// RegisterStructValidation registers a struct-level validation function.
func (v *Validator) RegisterStructValidation(fn validator.StructLevelFunc, types ...any) {
	v.validate.RegisterStructValidation(fn, types...)
}

// ValidateAndUnmarshal unmarshals JSON and validates the result.
// Returns ErrMissingParams if data is empty, ErrInvalidParams if unmarshal
// fails, or an *Error if validation fails.
func ValidateAndUnmarshal[T any](data []byte, dest *T) error {
	if len(data) == 0 {
		return ErrMissingParams
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return DefaultValidator.Validate(dest)
}

// validateDuration checks if string is a valid Go duration.
func validateDuration(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	_, err := time.ParseDuration(val)
	return err == nil
}

// validateRGBAColor accepts #RRGGBB and #RRGGBBAA.
func validateRGBAColor(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return rgbaColorRe.MatchString(val)
}

func validateEncoding(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "", "line", "bar":
		return true
	default:
		return false
	}
}
