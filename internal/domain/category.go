package domain

import "fmt"

// Category classifies a support request. Fixed at creation.
type Category string

const (
	CategoryPromotionRequest Category = "promotion-request"
	CategoryGeneralQuestion  Category = "general-question"
	CategorySuggestion       Category = "suggestion"
)

// TicketPriority enumerates handling urgency, derived from the category.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// Categories lists every selectable category in panel order.
func Categories() []Category {
	return []Category{CategoryPromotionRequest, CategoryGeneralQuestion, CategorySuggestion}
}

// ParseCategory maps a select-menu value to a Category.
func ParseCategory(value string) (Category, error) {
	switch Category(value) {
	case CategoryPromotionRequest, CategoryGeneralQuestion, CategorySuggestion:
		return Category(value), nil
	}
	return "", fmt.Errorf("unknown ticket category %q", value)
}

// Priority derives the archival priority deterministically from the category.
func (c Category) Priority() TicketPriority {
	switch c {
	case CategoryPromotionRequest:
		return TicketPriorityHigh
	case CategoryGeneralQuestion:
		return TicketPriorityMedium
	default:
		return TicketPriorityLow
	}
}

// Label returns the display label shown on the panel select menu.
func (c Category) Label() string {
	switch c {
	case CategoryPromotionRequest:
		return "Up de Patente"
	case CategoryGeneralQuestion:
		return "Dúvidas Gerais"
	case CategorySuggestion:
		return "Sugestões"
	}
	return string(c)
}

// Description returns the select-menu option description.
func (c Category) Description() string {
	switch c {
	case CategoryPromotionRequest:
		return "Solicitações de promoção"
	case CategoryGeneralQuestion:
		return "Perguntas gerais"
	case CategorySuggestion:
		return "Ideias para o servidor"
	}
	return ""
}

// Emoji returns the select-menu option emoji.
func (c Category) Emoji() string {
	switch c {
	case CategoryPromotionRequest:
		return "🏆"
	case CategoryGeneralQuestion:
		return "❓"
	case CategorySuggestion:
		return "💡"
	}
	return "🎫"
}

// Tag returns the short token embedded in ticket channel names,
// e.g. ticket-promo-alice. Must stay parseable by ParseChannelName.
func (c Category) Tag() string {
	switch c {
	case CategoryPromotionRequest:
		return "promo"
	case CategoryGeneralQuestion:
		return "duvida"
	case CategorySuggestion:
		return "sugestao"
	}
	return "geral"
}

// CategoryFromTag reverses Tag. Unknown tags map to general-question,
// the safest recovery default.
func CategoryFromTag(tag string) Category {
	for _, c := range Categories() {
		if c.Tag() == tag {
			return c
		}
	}
	return CategoryGeneralQuestion
}
