package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/config"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/events"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/repository"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/service"
)

// Bot wires the Discord gateway to the ticket service.
type Bot struct {
	cfg         *config.Config
	logger      *zap.Logger
	session     *discordgo.Session
	tickets     *service.TicketService
	collections *repository.Collections
	dispatcher  events.Dispatcher
	recorder    *service.Recorder
}

// NewSession creates the gateway session with the intents the ticket flow
// needs: guilds, guild messages with content, and members for role checks.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentsGuildMembers
	return session, nil
}

// New creates a new Bot instance and registers its event handlers.
func New(session *discordgo.Session, cfg *config.Config, tickets *service.TicketService, collections *repository.Collections, dispatcher events.Dispatcher, logger *zap.Logger) *Bot {
	b := &Bot{
		cfg:         cfg,
		logger:      logger,
		session:     session,
		tickets:     tickets,
		collections: collections,
		dispatcher:  dispatcher,
	}
	session.AddHandler(b.handleInteraction)
	session.AddHandler(b.handleMessageCreate)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info("gateway ready", zap.Int("guilds", len(r.Guilds)))
	})
	return b
}

// Start opens the gateway connection, registers the guild commands and runs
// the orphan reconciliation sweep. Startup is not finished until the sweep
// completes.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	b.logger.Info("connected to Discord", zap.String("user", b.session.State.User.Username))
	b.recorder = service.NewRecorder(b.collections.Tickets, b.collections.Transcripts, b.dispatcher, b.session.State.User.ID)

	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	removed := b.tickets.Reconcile(ctx)
	b.logger.Info("startup reconciliation finished",
		zap.Int("removed", len(removed)),
		zap.Int("open_tickets", b.collections.Tickets.Len()))
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	if b.session != nil {
		return b.session.Close()
	}
	return nil
}

// Tag returns the connected bot identity, or "" before the gateway is ready.
func (b *Bot) Tag() string {
	if b.session == nil || b.session.State == nil || b.session.State.User == nil {
		return ""
	}
	return b.session.State.User.Username
}

func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "ticket-panel",
			Description: "Cria o painel de tickets",
		},
		{
			Name:        "ticket-config",
			Description: "Configura o canal de tickets",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "canal",
					Description: "Canal para o painel",
					Type:        discordgo.ApplicationCommandOptionChannel,
					Required:    true,
				},
			},
		},
	}

	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.cfg.Discord.GuildID, commands)
	if err != nil {
		return err
	}
	b.logger.Info("slash commands registered", zap.Int("count", len(commands)))
	return nil
}
