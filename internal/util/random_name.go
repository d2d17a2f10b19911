package util

import (
	"fmt"
	"math/rand"
	"time"
)

var adjectives = []string{
	"Bluffing", "Raising", "Limping", "Folding", "Stacking", "Shoving", "Grinding", "Tilting", "Patient", "Lucky",
	"Fearless", "Crafty", "Silent", "Loose", "Tight", "Aggressive", "Suited", "Offsuit", "Slowrolling", "Wired",
	"Rivered", "Flopped", "Drawing", "Cagey", "Bold",
}

var animals = []string{
	"Shark", "Fish", "Donkey", "Wolf", "Fox", "Owl", "Rock", "Maniac", "Grinder", "Whale",
	"Tiger", "Rounder", "Nit", "Gambler", "Hustler", "Mouse", "Eagle", "Badger", "Viper", "Coyote",
}

var random = rand.New(rand.NewSource(time.Now().UnixNano())) // nolint:gosec

// GetRandomName returns a random display name for a player who joined without
// one, combining an adjective with a poker archetype
func GetRandomName() string {
	return fmt.Sprintf("%s %s", adjectives[random.Intn(len(adjectives))], animals[random.Intn(len(animals))])
}
