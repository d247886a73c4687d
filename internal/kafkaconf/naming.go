package kafkaconf

import "github.com/iancoleman/strcase"

// EntityKey folds an entity name into the lowerCamel key used in the
// consumer and producer maps.
//
//	"Foo"        → "foo"
//	"OrderLine"  → "orderLine"
//	"order-line" → "orderLine"
//	"Foo Bar"    → "fooBar"
func EntityKey(name string) string {
	return strcase.ToLowerCamel(name)
}

// EntityClass returns the UpperCamel class-name form of an entity name.
func EntityClass(name string) string {
	return strcase.ToCamel(name)
}

// TopicKey returns the default topic value suffix for an entity: the
// snake_case form of its name. Digits and acronyms start a new word.
func TopicKey(name string) string {
	return strcase.ToSnake(name)
}
