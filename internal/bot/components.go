package bot

import (
	"fmt"
	"strings"

	"dynasty-bot/internal/domain"
	"dynasty-bot/internal/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) dispatchComponent(in *interaction) {
	id := in.i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(id, acceptOfferPrefix):
		b.handleAcceptOffer(in, id)
	case strings.HasPrefix(id, week15Prefix):
		b.handleWeek15(in, id)
	default:
		in.logger.Warn().Str("custom_id", id).Msg("unknown component")
	}
}

// updateMessage replaces the message that carried the buttons.
func (b *Bot) updateMessage(in *interaction, content string) {
	b.respond(in, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	})
}

func (b *Bot) handleAcceptOffer(in *interaction, id string) {
	guildID, teamID, ok := parseAcceptOfferID(id)
	if !ok {
		b.reply(in, "That offer button is no longer valid.", true)
		return
	}

	b.respond(in, &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate})

	out, err := b.offers.Accept(in.ctx, guildID, in.userID(), teamID)
	var content string
	if err != nil {
		content = userMessage(err)
		if _, ok := service.AsRejection(err); !ok {
			in.logger.Error().Err(err).Str("guild_id", guildID).Msg("failed to accept offer")
		}
	} else {
		content = fmt.Sprintf("Congratulations! You are the new head coach of **%s**.", out.Team.Name) + warningsSuffix(out.Warnings)
	}

	empty := []discordgo.MessageComponent{}
	noEmbeds := []*discordgo.MessageEmbed{}
	edit := &discordgo.WebhookEdit{Content: &content}
	if err == nil {
		edit.Components = &empty
		edit.Embeds = &noEmbeds
	}
	if _, err := in.s.InteractionResponseEdit(in.i.Interaction, edit); err != nil {
		in.logger.Warn().Err(err).Msg("failed to update offer message")
	}
}

func (b *Bot) handleWeek15(in *interaction, id string) {
	promptID, choice, ok := parseWeek15ID(id)
	if !ok || !b.prompts.resolve(promptID, in.userID(), choice) {
		b.updateMessage(in, "This prompt has expired.")
		return
	}
	b.updateMessage(in, "Got it, advancing.")
}

func (b *Bot) autocomplete(in *interaction) {
	data := in.i.ApplicationCommandData()
	focused := focusedOption(data.Options)
	if focused == nil {
		return
	}

	// Roster moves only suggest open teams.
	onlyOpen := data.Name == "assign-team" || data.Name == "move-coach"
	teams, err := b.rosters.SearchTeams(in.ctx, in.i.GuildID, focused.StringValue(), onlyOpen)
	if err != nil {
		in.logger.Warn().Err(err).Msg("autocomplete search failed")
		teams = nil
	}

	b.respond(in, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: teamChoices(teams)},
	})
}

func focusedOption(opts []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	for _, o := range opts {
		if o.Focused {
			return o
		}
		if f := focusedOption(o.Options); f != nil {
			return f
		}
	}
	return nil
}

func teamChoices(teams []domain.Team) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(teams))
	for _, t := range teams {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(fmt.Sprintf("%s (%s)", t.Name, stars(t.StarRating)), 100),
			Value: t.Name,
		})
	}
	return choices
}
