package channel

// Bag is a flat, weakly typed reply from the remote service.
//
// Values arrive with whatever integer width the wire codec picked, so the
// typed accessors normalise every signed and unsigned integer kind.
type Bag map[string]any

// Has returns true if key is present, regardless of its value.
func (b Bag) Has(key string) bool {
	_, ok := b[key]
	return ok
}

// Int64 returns the integer stored under key.
// ok is false if the key is absent or not an integer.
func (b Bag) Int64(key string) (int64, bool) {
	v, present := b[key]
	if !present {
		return 0, false
	}
	return toInt64(v)
}

// Int returns the integer stored under key as an int.
func (b Bag) Int(key string) (int, bool) {
	v, ok := b.Int64(key)
	return int(v), ok
}

// String returns the string stored under key.
// ok is false if the key is absent or not a string.
func (b Bag) String(key string) (string, bool) {
	s, ok := b[key].(string)
	return s, ok
}

// Bool returns the boolean stored under key.
func (b Bag) Bool(key string) (bool, bool) {
	v, ok := b[key].(bool)
	return v, ok
}

// Int64Or returns the integer under key, or def when absent or mistyped.
func (b Bag) Int64Or(key string, def int64) int64 {
	if v, ok := b.Int64(key); ok {
		return v
	}
	return def
}

// StringOr returns the string under key, or def when absent or mistyped.
func (b Bag) StringOr(key, def string) string {
	if v, ok := b.String(key); ok {
		return v
	}
	return def
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}
