package homologation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Coerción de valores crudos a los tipos semánticos canónicos. Las fuentes
// entregan tipos dispares (un warehouse columnar devuelve int64 y
// time.Time, un feed CSV devuelve todo como string), así que cada helper
// acepta las representaciones razonables y falla con un motivo legible.

func comoTexto(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case fmt.Stringer:
		return x.String(), nil
	case int, int32, int64:
		return fmt.Sprintf("%d", x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case nil:
		return "", fmt.Errorf("valor ausente")
	}
	return "", fmt.Errorf("no se puede interpretar %T como texto", v)
}

func comoEntero(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case float64:
		return int(x), nil
	case decimal.Decimal:
		return int(x.IntPart()), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("%q no es un entero", x)
		}
		return n, nil
	case []byte:
		return comoEntero(string(x))
	case nil:
		return 0, fmt.Errorf("valor ausente")
	}
	return 0, fmt.Errorf("no se puede interpretar %T como entero", v)
}

func comoDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%q no es un decimal", x)
		}
		return d, nil
	case []byte:
		return comoDecimal(string(x))
	case nil:
		return decimal.Zero, fmt.Errorf("valor ausente")
	}
	return decimal.Zero, fmt.Errorf("no se puede interpretar %T como decimal", v)
}

func comoBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int, int32, int64:
		n, _ := comoEntero(x)
		return n != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "t", "1", "si", "sí", "s", "y", "yes":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		}
		return false, fmt.Errorf("%q no es un booleano", x)
	case []byte:
		return comoBool(string(x))
	case nil:
		return false, fmt.Errorf("valor ausente")
	}
	return false, fmt.Errorf("no se puede interpretar %T como booleano", v)
}

// Formatos de fecha aceptados, del más al menos específico.
var formatosFecha = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func comoFecha(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range formatosFecha {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%q no es una fecha reconocible", x)
	case []byte:
		return comoFecha(string(x))
	case nil:
		return time.Time{}, fmt.Errorf("valor ausente")
	}
	return time.Time{}, fmt.Errorf("no se puede interpretar %T como fecha", v)
}
