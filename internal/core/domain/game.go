package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Game string

const (
	GameFortnite Game = "fortnite"
	GameApex     Game = "apex"
)

// Games lists the supported games in display order.
var Games = []Game{GameFortnite, GameApex}

func ParseGame(s string) (Game, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fortnite", "fn", "f":
		return GameFortnite, nil
	case "apex", "apex legends", "a":
		return GameApex, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGame, s)
}

func (g Game) Valid() bool {
	return g == GameFortnite || g == GameApex
}

func (g Game) DisplayName() string {
	if g == GameApex {
		return "Apex Legends"
	}
	return cases.Title(language.English).String(string(g))
}
