package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/domain"
)

// Component custom ids. The modal submission carries only the interaction's
// channel id, which is the correlation key back to the pending close.
const (
	customIDTicketSelect = "ticket_select"
	customIDAssume       = "ticket_assume"
	customIDClose        = "ticket_close"
	customIDCloseModal   = "ticket_close_reason"
	customIDReasonInput  = "close_reason"
)

const (
	colorPanel   = 0x0099ff
	colorWelcome = 0x00ff00
	colorClosed  = 0xff5555
)

func panelEmbed(imageURL string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "🎫 SISTEMA DE TICKETS",
		Description: "Selecione o tipo de atendimento:",
		Color:       colorPanel,
	}
	if imageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: imageURL}
	}
	return embed
}

func panelComponents() []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(domain.Categories()))
	for _, category := range domain.Categories() {
		options = append(options, discordgo.SelectMenuOption{
			Label:       category.Label(),
			Description: category.Description(),
			Value:       string(category),
			Emoji:       &discordgo.ComponentEmoji{Name: category.Emoji()},
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    customIDTicketSelect,
					Placeholder: "🎫 Selecione uma opção...",
					Options:     options,
				},
			},
		},
	}
}

func welcomeEmbed(requester domain.UserRef, category domain.Category) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎫 Ticket Criado!",
		Description: fmt.Sprintf("Olá <@%s>! Descreva sua solicitação.", requester.ID),
		Color:       colorWelcome,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Categoria", Value: fmt.Sprintf("%s %s", category.Emoji(), category.Label()), Inline: true},
		},
	}
}

func staffActionRow() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					CustomID: customIDAssume,
					Label:    "Assumir Ticket",
					Style:    discordgo.PrimaryButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "🙋"},
				},
				discordgo.Button{
					CustomID: customIDClose,
					Label:    "Fechar Ticket",
					Style:    discordgo.DangerButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "🔒"},
				},
			},
		},
	}
}

func closingEmbed(closed domain.ClosedTicket) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🔒 Ticket Fechado",
		Color: colorClosed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ID", Value: closed.ID, Inline: true},
			{Name: "Duração", Value: closed.Duration, Inline: true},
			{Name: "Fechado por", Value: closed.ClosedBy.Name, Inline: true},
			{Name: "Motivo", Value: closed.Reason},
		},
		Description: "Este canal será excluído em instantes.",
	}
}

func closeReasonModal() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: customIDCloseModal,
			Title:    "Fechar Ticket",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    customIDReasonInput,
							Label:       "Motivo do fechamento",
							Style:       discordgo.TextInputParagraph,
							Placeholder: "Descreva o motivo...",
							Required:    true,
							MaxLength:   500,
						},
					},
				},
			},
		},
	}
}
