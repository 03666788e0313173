package service

import (
	"strconv"
	"strings"
)

// CardBrand names the network of a card number by its IIN prefix.
func CardBrand(number string) string {
	n := digits(number)
	prefix := func(l int) int {
		if len(n) < l {
			return -1
		}
		v, _ := strconv.Atoi(n[:l])
		return v
	}

	switch {
	case strings.HasPrefix(n, "4"):
		return "visa"
	case prefix(2) >= 51 && prefix(2) <= 55, prefix(4) >= 2221 && prefix(4) <= 2720:
		return "mastercard"
	case prefix(2) == 34 || prefix(2) == 37:
		return "amex"
	case strings.HasPrefix(n, "6011"), strings.HasPrefix(n, "65"), prefix(3) >= 644 && prefix(3) <= 649:
		return "discover"
	case prefix(4) >= 3528 && prefix(4) <= 3589:
		return "jcb"
	}
	return "card"
}

func lastFour(number string) string {
	n := digits(number)
	if len(n) <= 4 {
		return n
	}
	return n[len(n)-4:]
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
