package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/config"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/domain"
)

// ChannelManager implements the ticket service's outbound channel surface
// with discordgo. All calls are best effort and never retried.
type ChannelManager struct {
	session *discordgo.Session
	cfg     config.DiscordConfig
	logger  *zap.Logger
}

// NewChannelManager constructs the manager.
func NewChannelManager(session *discordgo.Session, cfg config.DiscordConfig, logger *zap.Logger) *ChannelManager {
	return &ChannelManager{session: session, cfg: cfg, logger: logger}
}

// CreateTicketChannel creates the private channel under the ticket category:
// hidden from everyone, visible to the requester and the staff role.
func (m *ChannelManager) CreateTicketChannel(ctx context.Context, requester domain.UserRef, category domain.Category) (string, error) {
	channel, err := m.session.GuildChannelCreateComplex(m.cfg.GuildID, discordgo.GuildChannelCreateData{
		Name:     domain.ChannelName(category, requester.Name),
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: m.cfg.TicketCategoryID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				ID:   m.cfg.GuildID,
				Type: discordgo.PermissionOverwriteTypeRole,
				Deny: discordgo.PermissionViewChannel,
			},
			{
				ID:    requester.ID,
				Type:  discordgo.PermissionOverwriteTypeMember,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
			},
			{
				ID:    m.cfg.StaffRoleID,
				Type:  discordgo.PermissionOverwriteTypeRole,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
			},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return channel.ID, nil
}

// SendWelcome posts the opening message mentioning the requester and the
// staff role, with the staff action buttons.
func (m *ChannelManager) SendWelcome(ctx context.Context, channelID string, requester domain.UserRef, category domain.Category) error {
	_, err := m.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    fmt.Sprintf("<@%s> <@&%s>", requester.ID, m.cfg.StaffRoleID),
		Embeds:     []*discordgo.MessageEmbed{welcomeEmbed(requester, category)},
		Components: staffActionRow(),
	}, discordgo.WithContext(ctx))
	return err
}

// PostClosingNotice posts the closure summary into the channel before it is
// deleted.
func (m *ChannelManager) PostClosingNotice(ctx context.Context, channelID string, closed domain.ClosedTicket) error {
	_, err := m.session.ChannelMessageSendEmbed(channelID, closingEmbed(closed), discordgo.WithContext(ctx))
	return err
}

// DeleteChannel removes the ticket channel.
func (m *ChannelManager) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := m.session.ChannelDelete(channelID, discordgo.WithContext(ctx))
	return err
}

// ChannelExists reports whether the channel is still a ticket channel:
// reachable and parented under the ticket category.
func (m *ChannelManager) ChannelExists(ctx context.Context, channelID string) bool {
	channel, err := m.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return false
	}
	return channel.ParentID == m.cfg.TicketCategoryID
}
