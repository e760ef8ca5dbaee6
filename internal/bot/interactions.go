package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/domain"
	apperrors "github.com/Adrianzinhoxp/ticketsdashboard/pkg/util"
)

// interactionResponder is the slice of the gateway session the reply helpers
// need. *discordgo.Session satisfies it; tests substitute a fake.
type interactionResponder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// handleInteraction dispatches slash commands, component presses and modal
// submissions. Unexpected panics are the last resort: all four collections
// are flushed before the handler unwinds, to minimize loss.
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer b.recoverAndFlush("interaction")

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		switch data.Name {
		case "ticket-panel":
			b.handlePanelCommand(s, i)
		case "ticket-config":
			b.handleConfigCommand(s, i)
		default:
			b.logger.Warn("unknown command", zap.String("command", data.Name))
		}
	case discordgo.InteractionMessageComponent:
		switch i.MessageComponentData().CustomID {
		case customIDTicketSelect:
			b.handleTicketSelection(s, i)
		case customIDAssume:
			b.handleAssume(s, i)
		case customIDClose:
			b.handleCloseRequest(s, i)
		}
	case discordgo.InteractionModalSubmit:
		if i.ModalSubmitData().CustomID == customIDCloseModal {
			b.handleCloseReason(s, i)
		}
	}
}

// handleMessageCreate feeds channel messages into the transcript recorder.
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer b.recoverAndFlush("message")

	if b.recorder == nil || m.Author == nil || m.GuildID != b.cfg.Discord.GuildID {
		return
	}

	attachments := make([]domain.Attachment, 0, len(m.Attachments))
	for _, attachment := range m.Attachments {
		attachments = append(attachments, domain.Attachment{
			Name: attachment.Filename,
			URL:  attachment.URL,
			Kind: domain.ClassifyAttachment(attachment.ContentType),
		})
	}

	b.recorder.Record(m.ChannelID, domain.TranscriptEntry{
		AuthorID:    m.Author.ID,
		AuthorName:  m.Author.Username,
		IsStaff:     b.memberIsStaff(m.Member),
		Content:     m.Content,
		Timestamp:   m.Timestamp,
		Attachments: attachments,
	})
}

func (b *Bot) handlePanelCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if guildCfg, ok := b.collections.Configs.Get(i.GuildID); ok && guildCfg.PanelChannelID != i.ChannelID {
		b.replyEphemeral(s, i, fmt.Sprintf("❌ O painel só pode ser criado em <#%s>.", guildCfg.PanelChannelID))
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{panelEmbed(b.cfg.Discord.PanelImageURL)},
			Components: panelComponents(),
		},
	})
	if err != nil {
		b.logger.Error("failed to post ticket panel", zap.Error(err))
	}
}

func (b *Bot) handleConfigCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.replyEphemeral(s, i, "❌ Informe o canal do painel.")
		return
	}
	channel := options[0].ChannelValue(s)
	if channel == nil {
		b.replyEphemeral(s, i, "❌ Canal inválido.")
		return
	}

	b.collections.Configs.Upsert(domain.GuildConfig{
		GuildID:        i.GuildID,
		PanelChannelID: channel.ID,
	})
	b.replyEphemeral(s, i, fmt.Sprintf("✅ Canal configurado: <#%s>", channel.ID))
}

func (b *Bot) handleTicketSelection(s *discordgo.Session, i *discordgo.InteractionCreate) {
	values := i.MessageComponentData().Values
	if len(values) == 0 || i.Member == nil || i.Member.User == nil {
		return
	}
	category, err := domain.ParseCategory(values[0])
	if err != nil {
		b.replyEphemeral(s, i, "❌ Opção inválida.")
		return
	}

	user := i.Member.User
	requester := domain.UserRef{
		ID:        user.ID,
		Name:      user.Username,
		AvatarURL: user.AvatarURL(""),
	}

	ticket, err := b.tickets.OpenTicket(context.Background(), requester, category)
	if err != nil {
		if apperrors.IsCode(err, "DUPLICATE_TICKET") {
			b.replyEphemeral(s, i, "❌ Você já possui um ticket aberto!")
			return
		}
		b.logger.Error("failed to open ticket", zap.String("user_id", user.ID), zap.Error(err))
		b.replyEphemeral(s, i, "❌ Erro ao criar ticket.")
		return
	}

	channels := NewChannelManager(s, b.cfg.Discord, b.logger)
	if err := channels.SendWelcome(context.Background(), ticket.ChannelID, requester, category); err != nil {
		b.logger.Warn("failed to send welcome message",
			zap.String("channel_id", ticket.ChannelID), zap.Error(err))
	}
	b.replyEphemeral(s, i, fmt.Sprintf("✅ Ticket criado: <#%s>", ticket.ChannelID))
}

func (b *Bot) handleAssume(s *discordgo.Session, i *discordgo.InteractionCreate) {
	staff, ok := b.staffFromInteraction(i)
	if !ok {
		b.replyEphemeral(s, i, "❌ Apenas a staff pode assumir tickets.")
		return
	}

	_, err := b.tickets.Assume(context.Background(), i.ChannelID, staff)
	if err != nil {
		b.replyEphemeral(s, i, "❌ Ticket não encontrado para este canal.")
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("🙋 Ticket assumido por <@%s>.", staff.ID),
		},
	})
	if err != nil {
		b.fallbackToChannel(s, i.ChannelID, fmt.Sprintf("🙋 Ticket assumido por <@%s>.", staff.ID), err)
	}
}

func (b *Bot) handleCloseRequest(s *discordgo.Session, i *discordgo.InteractionCreate) {
	staff, ok := b.staffFromInteraction(i)
	if !ok {
		b.replyEphemeral(s, i, "❌ Apenas a staff pode fechar tickets.")
		return
	}

	// Enter close-pending before showing the form: the submission arrives as
	// a separate event correlated only by channel id.
	b.tickets.RequestClose(i.ChannelID, staff)

	if err := s.InteractionRespond(i.Interaction, closeReasonModal()); err != nil {
		b.fallbackToChannel(s, i.ChannelID, "❌ Não foi possível abrir o formulário de fechamento. Tente novamente.", err)
	}
}

func (b *Bot) handleCloseReason(s *discordgo.Session, i *discordgo.InteractionCreate) {
	staff, ok := b.staffFromInteraction(i)
	if !ok {
		b.replyEphemeral(s, i, "❌ Apenas a staff pode fechar tickets.")
		return
	}

	reason := modalInputValue(i.ModalSubmitData(), customIDReasonInput)
	channelName := ""
	if channel, err := s.Channel(i.ChannelID); err == nil {
		channelName = channel.Name
	}

	closed, err := b.tickets.SubmitCloseReason(context.Background(), i.ChannelID, channelName, reason, staff)
	if err != nil {
		if apperrors.IsCode(err, "VALIDATION_FAILED") {
			b.replyEphemeral(s, i, "❌ O motivo do fechamento é obrigatório.")
			return
		}
		b.replyEphemeral(s, i, "❌ Este canal não corresponde a um ticket aberto.")
		return
	}

	confirmation := fmt.Sprintf("✅ Ticket **%s** fechado. Este canal será excluído em instantes.", closed.ID)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: confirmation},
	})
	if err != nil {
		b.fallbackToChannel(s, i.ChannelID, confirmation, err)
	}
}

// replyEphemeral answers the interaction privately. When the interaction
// aged out past the response window the content is posted into the channel
// directly instead of failing silently.
func (b *Bot) replyEphemeral(s interactionResponder, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.fallbackToChannel(s, i.ChannelID, content, err)
	}
}

func (b *Bot) fallbackToChannel(s interactionResponder, channelID, content string, cause error) {
	b.logger.Warn("interaction respond failed; posting to channel",
		zap.Error(apperrors.NewStaleInteraction(channelID, cause)))
	if channelID == "" {
		return
	}
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		b.logger.Error("channel fallback failed", zap.String("channel_id", channelID), zap.Error(err))
	}
}

func (b *Bot) staffFromInteraction(i *discordgo.InteractionCreate) (domain.StaffRef, bool) {
	if i.Member == nil || i.Member.User == nil || !b.memberIsStaff(i.Member) {
		return domain.StaffRef{}, false
	}
	return domain.StaffRef{ID: i.Member.User.ID, Name: i.Member.User.Username}, true
}

func (b *Bot) memberIsStaff(member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	for _, role := range member.Roles {
		if role == b.cfg.Discord.StaffRoleID {
			return true
		}
	}
	return false
}

func modalInputValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			input, ok := component.(*discordgo.TextInput)
			if ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}

func (b *Bot) recoverAndFlush(scope string) {
	if r := recover(); r != nil {
		b.logger.Error("handler panic", zap.String("scope", scope), zap.Any("panic", r))
		b.collections.Flush(b.logger)
	}
}
