package domain

import (
	"strconv"
	"strings"
)

// Commodity is a category of goods or services taxed at its own rate.
// Values are ENGINE-CONSTANTS: append new members at the end and give each one
// a baseline entry.
type Commodity int

const (
	CommodityDefault Commodity = iota
	CommodityAlcohol
	CommodityFood
	CommodityFoodServices
	CommodityLiterature
	CommodityTransport
	CommodityCulturalServices
)

var commodityNames = map[Commodity]string{
	CommodityDefault:          "default",
	CommodityAlcohol:          "alcohol",
	CommodityFood:             "food",
	CommodityFoodServices:     "food_services",
	CommodityLiterature:       "literature",
	CommodityTransport:        "transport",
	CommodityCulturalServices: "cultural_services",
}

// Commodities lists every known commodity in declaration order.
func Commodities() []Commodity {
	return []Commodity{
		CommodityDefault,
		CommodityAlcohol,
		CommodityFood,
		CommodityFoodServices,
		CommodityLiterature,
		CommodityTransport,
		CommodityCulturalServices,
	}
}

func (c Commodity) String() string {
	if name, ok := commodityNames[c]; ok {
		return name
	}
	return "commodity(" + strconv.Itoa(int(c)) + ")"
}

// Known reports whether c is a member of the closed commodity set.
func (c Commodity) Known() bool {
	_, ok := commodityNames[c]
	return ok
}

// ParseCommodity accepts snake_case, kebab-case or CamelCase names, case-insensitively.
func ParseCommodity(raw string) (Commodity, error) {
	key := normalizeName(raw)
	for c, name := range commodityNames {
		if normalizeName(name) == key {
			return c, nil
		}
	}
	return CommodityDefault, ErrInvalidCommodity
}

func normalizeName(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.ReplaceAll(value, "_", "")
	value = strings.ReplaceAll(value, "-", "")
	return strings.ReplaceAll(value, " ", "")
}
