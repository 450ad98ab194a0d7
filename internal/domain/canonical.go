package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CanonicalJSON serializa a la forma canónica usada en prompts, logs y
// replay: claves ordenadas, sin espacios y con escapes ASCII. Dos valores
// equivalentes producen siempre los mismos bytes.
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("domain.CanonicalJSON: marshal: %w", err)
	}

	// Round-trip por map para que encoding/json ordene las claves.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tmp any
	if err := dec.Decode(&tmp); err != nil {
		return nil, fmt.Errorf("domain.CanonicalJSON: normalize: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tmp); err != nil {
		return nil, fmt.Errorf("domain.CanonicalJSON: encode: %w", err)
	}
	return escapeNonASCII(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// escapeNonASCII reemplaza runas fuera de ASCII por escapes \uXXXX.
func escapeNonASCII(in []byte) []byte {
	ascii := true
	for _, b := range in {
		if b >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return in
	}
	var out bytes.Buffer
	for _, r := range string(in) {
		if r < 0x80 {
			out.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			r1, r2 := utf16Pair(r)
			fmt.Fprintf(&out, "\\u%04x\\u%04x", r1, r2)
		} else {
			fmt.Fprintf(&out, "\\u%04x", r)
		}
	}
	return out.Bytes()
}

func utf16Pair(r rune) (rune, rune) {
	r -= 0x10000
	return 0xD800 + (r >> 10), 0xDC00 + (r & 0x3FF)
}
