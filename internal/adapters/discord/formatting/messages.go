package formatting

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"drop-bot/internal/core/domain"
)

const (
	MsgAdminRequired  = "You need Administrator permissions to use this command."
	MsgGuildOnly      = "This command can only be used in a server."
	MsgNotPermitted   = "Only the bot developer can use this command."
	MsgUnknownCommand = "Unknown command. Use /help to see what I can do."
	MsgGenericError   = "Something went wrong, please try again later."
	MsgBlocked        = "You are blocked from using this bot."
	MsgBecameBlocked  = "You have been blocked for spamming commands."
	MsgUpdateNotice   = "The bot has been updated! Use /help to see what's new."
	MsgVoteThanks     = "Thanks for voting! Your cooldown has been lowered."
)

// Render turns a core outcome into response text. The second result reports
// whether only the caller should see it.
func Render(out domain.Outcome) (string, bool) {
	if !out.Gate.Allowed() {
		return MsgDenied(out.Gate), true
	}

	var body string
	ephemeral := false
	switch {
	case out.Drop != nil:
		body = MsgDrop(*out.Drop)
		if out.UpdateNotice {
			body += "\n" + MsgUpdateNotice
		}
	case out.Weight != nil:
		body = MsgWeight(*out.Weight)
		ephemeral = !out.Weight.Accepted
	case out.Weights != nil:
		body = MsgWeights(*out.Weights)
	case out.Settings != nil:
		body = MsgSettings(*out.Settings)
	default:
		body = out.Message
	}

	if out.Gate.VoteAcknowledged {
		body = MsgVoteThanks + "\n" + body
	}
	return body, ephemeral
}

// MsgDenied is the text for a gated attempt.
func MsgDenied(d domain.Decision) string {
	switch {
	case d.State == domain.GateBlocked:
		return MsgBlocked
	case d.BecameBlocked:
		return MsgBecameBlocked
	case d.VoteAcknowledged:
		return fmt.Sprintf("%s Try again in %s.", MsgVoteThanks, seconds(d.SecondsRemaining))
	case d.State == domain.GateWarnedNonVoter:
		return fmt.Sprintf(
			"Slow down! Try again in %s. Vote for the bot on top.gg to lower your cooldown. Repeated spamming will get you blocked.",
			seconds(d.SecondsRemaining),
		)
	default:
		return fmt.Sprintf("Slow down! Try again in %s.", seconds(d.SecondsRemaining))
	}
}

func MsgDrop(res domain.DropResult) string {
	return fmt.Sprintf("%s drop: **%s** (%s%% chance)", res.Game.DisplayName(), res.LocationName, percent(res.ChancePercent))
}

func MsgWeight(res domain.WeightResult) string {
	if res.Accepted {
		return fmt.Sprintf("Set %s to weight %d. Total weight is now %d.", res.LocationName, res.Weight, res.NewTotal)
	}

	switch {
	case errors.Is(res.Reason, domain.ErrNoOp):
		return fmt.Sprintf("%s already has weight %d.", res.LocationName, res.Weight)
	case errors.Is(res.Reason, domain.ErrDegenerateTable):
		return "At least one location must keep a weight above 0."
	case errors.Is(res.Reason, domain.ErrOutOfRange):
		return fmt.Sprintf("Weight %d is out of range.", res.Weight)
	}
	return MsgGenericError
}

func MsgWeights(view domain.WeightsView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s weights (total %d):\n", view.Game.DisplayName(), view.Total)
	for _, loc := range view.Locations {
		fmt.Fprintf(&b, "%d. %s: %d (%s%%)\n", loc.Index, loc.Name, loc.Weight, percent(loc.ChancePercent))
	}
	return b.String()
}

func MsgSettings(s domain.GuildSettings) string {
	audio := "on"
	if s.AudioMuted {
		audio = "muted"
	}
	return fmt.Sprintf("Default game: %s\nAudio: %s", s.DefaultGame.DisplayName(), audio)
}

// MsgError maps a command error to the text shown to the caller.
func MsgError(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownCommand):
		return MsgUnknownCommand
	case errors.Is(err, domain.ErrNotPermitted):
		return MsgNotPermitted
	case errors.Is(err, domain.ErrUnknownGame):
		return "Unknown game. Choose fortnite or apex."
	case errors.Is(err, domain.ErrUnknownLocation), errors.Is(err, domain.ErrOutOfRange):
		return "Unknown location. Use /weights to list the locations."
	case errors.Is(err, domain.ErrInvalidArgument):
		return "Invalid input: " + strings.TrimPrefix(err.Error(), domain.ErrInvalidArgument.Error()+": ")
	}
	return MsgGenericError
}

func seconds(n int) string {
	if n == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", n)
}

func percent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
