package discord_bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"image_generation_server/entities"
	"image_generation_server/generation_pipeline"
	"image_generation_server/validation"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const promptOption = "prompt"

type botImpl struct {
	botSession         *discordgo.Session
	guildID            string
	imagineCommand     string
	removeCommands     bool
	pipeline           generation_pipeline.Pipeline
	registeredCommands []*discordgo.ApplicationCommand
	ctx                context.Context
	cancel             context.CancelFunc
	log                zerolog.Logger
}

type Config struct {
	DevelopmentMode bool
	BotToken        string
	// GuildID is optional; commands are registered globally when empty.
	GuildID        string
	Pipeline       generation_pipeline.Pipeline
	ImagineCommand string
	RemoveCommands bool
	Logger         zerolog.Logger
}

func New(cfg Config) (Bot, error) {
	if cfg.BotToken == "" {
		return nil, errors.New("missing bot token")
	}

	if cfg.Pipeline == nil {
		return nil, errors.New("missing generation pipeline")
	}

	if cfg.ImagineCommand == "" {
		return nil, errors.New("missing imagine command")
	}

	botSession, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}

	log := cfg.Logger

	botSession.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", s.State.User.Username).Msg("Logged in to Discord")
	})

	err = botSession.Open()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	bot := &botImpl{
		botSession:         botSession,
		guildID:            cfg.GuildID,
		imagineCommand:     commandName(cfg.ImagineCommand, cfg.DevelopmentMode),
		removeCommands:     cfg.RemoveCommands,
		pipeline:           cfg.Pipeline,
		registeredCommands: make([]*discordgo.ApplicationCommand, 0),
		ctx:                ctx,
		cancel:             cancel,
		log:                log,
	}

	err = bot.addImagineCommand()
	if err != nil {
		cancel()
		_ = botSession.Close()

		return nil, err
	}

	botSession.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}

		switch i.ApplicationCommandData().Name {
		case bot.imagineCommand:
			bot.processImagineCommand(s, i)
		default:
			log.Warn().Str("command", i.ApplicationCommandData().Name).Msg("Unknown command")
		}
	})

	return bot, nil
}

func (b *botImpl) Start(ctx context.Context) {
	<-ctx.Done()

	err := b.teardown()
	if err != nil {
		b.log.Error().Err(err).Msg("Error tearing down bot")
	}
}

func (b *botImpl) teardown() error {
	b.cancel()

	if b.removeCommands {
		for _, cmd := range b.registeredCommands {
			err := b.botSession.ApplicationCommandDelete(b.botSession.State.User.ID, b.guildID, cmd.ID)
			if err != nil {
				b.log.Error().Err(err).Str("command", cmd.Name).Msg("Error deleting command")
			}
		}
	}

	return b.botSession.Close()
}

func (b *botImpl) addImagineCommand() error {
	b.log.Info().Str("command", b.imagineCommand).Msg("Adding command")

	cmd, err := b.botSession.ApplicationCommandCreate(b.botSession.State.User.ID, b.guildID, &discordgo.ApplicationCommand{
		Name:        b.imagineCommand,
		Description: "Ask the bot to imagine something",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        promptOption,
				Description: "The text prompt to imagine",
				Required:    true,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create %q command: %w", b.imagineCommand, err)
	}

	b.registeredCommands = append(b.registeredCommands, cmd)

	return nil
}

func (b *botImpl) processImagineCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	prompt := promptFromOptions(i.ApplicationCommandData().Options)

	log := b.log.With().Str("interaction_id", i.ID).Str("user_id", interactionUserID(i)).Logger()

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Error().Err(err).Msg("Error deferring interaction response")
		return
	}

	generation, genErr := b.pipeline.Generate(b.ctx, &entities.GenerationRequest{Prompt: prompt})
	if genErr != nil {
		log.Error().Err(genErr).Msg("Imagine command failed")
	}

	_, err = s.InteractionResponseEdit(i.Interaction, resultEdit(interactionUserID(i), prompt, generation, genErr))
	if err != nil {
		log.Error().Err(err).Msg("Error editing interaction response")
	}
}

func commandName(base string, developmentMode bool) string {
	if developmentMode {
		return "dev_" + base
	}

	return base
}

func promptFromOptions(options []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, opt := range options {
		if opt.Name == promptOption && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}

	return ""
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.ID
	case i.User != nil:
		return i.User.ID
	default:
		return ""
	}
}

// resultEdit renders the outcome of a generation as the final interaction message.
func resultEdit(userID, prompt string, generation *entities.ImageGeneration, err error) *discordgo.WebhookEdit {
	if err != nil {
		content := fmt.Sprintf("Sorry <@%s>, I couldn't imagine that. %s", userID, failureMessage(err))

		return &discordgo.WebhookEdit{
			Content: &content,
			Embeds:  &[]*discordgo.MessageEmbed{},
		}
	}

	content := fmt.Sprintf("<@%s> asked me to imagine \"%s\".", userID, prompt)

	return &discordgo.WebhookEdit{
		Content: &content,
		Embeds: &[]*discordgo.MessageEmbed{
			{
				Title:       fmt.Sprintf("Image generation #%d", generation.ID),
				Description: generation.Prompt,
				URL:         generation.ImageURL,
				Image:       &discordgo.MessageEmbedImage{URL: generation.ImageURL},
				Footer:      &discordgo.MessageEmbedFooter{Text: generation.Model},
				Timestamp:   generation.CreatedAt.Format(time.RFC3339),
			},
		},
	}
}

func failureMessage(err error) string {
	var validationErr *validation.ValidationError
	var storageErr *generation_pipeline.StorageError

	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message()
	case errors.As(err, &storageErr):
		return "The image was generated but could not be saved."
	default:
		return "Image generation failed, please try again later."
	}
}
