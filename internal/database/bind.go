package database

import (
	"fmt"
	"strings"
)

// ExpandNamed rewrites a statement with named placeholders (":name") into
// the positional "?" form the drivers expect, returning the rewritten SQL
// and the argument list in placeholder order. Placeholders inside quoted
// string literals are left untouched. Every placeholder must have a value
// in params; extra params are ignored (the mapper binds exactly the
// placeholders it emits).
func ExpandNamed(sqlText string, params map[string]interface{}) (string, []interface{}, error) {
	var sb strings.Builder
	sb.Grow(len(sqlText))

	args := make([]interface{}, 0, len(params))
	inString := false

	for i := 0; i < len(sqlText); i++ {
		c := sqlText[i]

		if c == '\'' {
			inString = !inString
			sb.WriteByte(c)
			continue
		}

		if inString || c != ':' || i+1 >= len(sqlText) || !isIdentByte(sqlText[i+1]) {
			sb.WriteByte(c)
			continue
		}

		// Consume the placeholder name.
		j := i + 1
		for j < len(sqlText) && isIdentByte(sqlText[j]) {
			j++
		}
		name := sqlText[i+1 : j]

		value, ok := params[name]
		if !ok {
			return "", nil, fmt.Errorf("no value bound for placeholder :%s", name)
		}

		sb.WriteByte('?')
		args = append(args, value)
		i = j - 1
	}

	return sb.String(), args, nil
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
