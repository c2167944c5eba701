// Package scoring turns a feature signal into per-class scores and a single
// class decision. Both steps are pure functions over explicit, versioned,
// immutable weight and threshold configurations.
package scoring

import (
	"fmt"
	"strings"
)

// Class is one of the four document classes.
type Class string

const (
	Arbeitsbericht Class = "arbeitsbericht"
	Typeplate      Class = "typeplate"
	Document       Class = "document"
	Photo          Class = "photo"
)

// Classes lists every class in decision priority order.
var Classes = []Class{Arbeitsbericht, Typeplate, Document, Photo}

var codes = map[Class]string{
	Arbeitsbericht: "AR",
	Typeplate:      "TP",
	Document:       "DOC",
	Photo:          "PHOTO",
}

// Code returns the short class code (AR, TP, DOC, PHOTO).
func (c Class) Code() string {
	return codes[c]
}

// Valid reports whether c is one of the four classes.
func (c Class) Valid() bool {
	_, ok := codes[c]
	return ok
}

// ParseClass accepts a class name or code, case-insensitive.
func ParseClass(s string) (Class, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, code := range codes {
		if s == string(c) || s == strings.ToLower(code) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidClass, s)
}

func (c Class) MarshalText() ([]byte, error) {
	return []byte(c), nil
}

func (c *Class) UnmarshalText(text []byte) error {
	parsed, err := ParseClass(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Feature names a weighted term in a class score.
type Feature string

const (
	KeywordHit      Feature = "keyword_hit"
	LongText        Feature = "long_text"
	Vision          Feature = "vision"
	DigitRatio      Feature = "digit_ratio"
	EdgeDensity     Feature = "edge_density"
	ColorUniformity Feature = "color_uniformity"
	Border          Feature = "border"
	Geometry        Feature = "geometry"
	TextLength      Feature = "text_length"
	LowText         Feature = "low_text"
)

// Key identifies a single weight.
type Key struct {
	Class   Class
	Feature Feature
}

func (k Key) String() string {
	return k.Class.Code() + "." + string(k.Feature)
}

var schema = map[Class][]Feature{
	Arbeitsbericht: {KeywordHit, LongText, Vision},
	Typeplate:      {Vision, KeywordHit, DigitRatio, EdgeDensity, ColorUniformity, Border, Geometry},
	Document:       {TextLength, Vision},
	Photo:          {LowText, Vision},
}

// Features returns the weighted features contributing to a class score.
func Features(c Class) []Feature {
	return append([]Feature(nil), schema[c]...)
}

// Schema returns every weight key in class priority order.
func Schema() []Key {
	var keys []Key
	for _, c := range Classes {
		for _, f := range schema[c] {
			keys = append(keys, Key{Class: c, Feature: f})
		}
	}
	return keys
}

func inSchema(k Key) bool {
	for _, f := range schema[k.Class] {
		if f == k.Feature {
			return true
		}
	}
	return false
}
