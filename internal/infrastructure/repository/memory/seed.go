package memory

import "github.com/dlawede/fantasy-roster/internal/domain/player"

const seedSeason = 2026

// SeedPlayers returns a development catalog: seven clubs with a usable
// spread of positions and costs so every roster operation can be exercised
// without a database.
func SeedPlayers() []player.Player {
	return []player.Player{
		{Name: "Marco Deluca", Team: "Harbour City", Season: seedSeason, Position: player.PositionGoalkeeper, Cost: 6.5, Stats: player.SeasonStats{Saves: 41}},
		{Name: "Tomas Vrba", Team: "Northgate United", Season: seedSeason, Position: player.PositionGoalkeeper, Cost: 5.5, Stats: player.SeasonStats{Saves: 35}},
		{Name: "Felix Arnarson", Team: "Red Valley", Season: seedSeason, Position: player.PositionGoalkeeper, Cost: 4.5, Stats: player.SeasonStats{Saves: 28}},
		{Name: "Owen Driscoll", Team: "Westport Albion", Season: seedSeason, Position: player.PositionGoalkeeper, Cost: 4.0, Stats: player.SeasonStats{Saves: 22}},
		{Name: "Sergio Mateus", Team: "Harbour City", Season: seedSeason, Position: player.PositionDefender, Cost: 6.0, Stats: player.SeasonStats{Goals: 3, Assists: 2}},
		{Name: "Jonas Keller", Team: "Northgate United", Season: seedSeason, Position: player.PositionDefender, Cost: 5.5, Stats: player.SeasonStats{Goals: 2, Assists: 1}},
		{Name: "Andrei Balan", Team: "Red Valley", Season: seedSeason, Position: player.PositionDefender, Cost: 5.0, Stats: player.SeasonStats{Goals: 1, Assists: 3}},
		{Name: "Kofi Asante", Team: "Westport Albion", Season: seedSeason, Position: player.PositionDefender, Cost: 4.5, Stats: player.SeasonStats{Goals: 1}},
		{Name: "Tariq El-Amin", Team: "Eastmoor Rovers", Season: seedSeason, Position: player.PositionDefender, Cost: 4.0, Stats: player.SeasonStats{Assists: 2}},
		{Name: "Pavel Horak", Team: "Southbank Athletic", Season: seedSeason, Position: player.PositionDefender, Cost: 3.5},
		{Name: "Luca Moretti", Team: "Harbour City", Season: seedSeason, Position: player.PositionMidfielder, Cost: 8.0, Stats: player.SeasonStats{Goals: 9, Assists: 11}},
		{Name: "Dani Costa", Team: "Northgate United", Season: seedSeason, Position: player.PositionMidfielder, Cost: 7.0, Stats: player.SeasonStats{Goals: 7, Assists: 8}},
		{Name: "Yusuf Demir", Team: "Eastmoor Rovers", Season: seedSeason, Position: player.PositionMidfielder, Cost: 6.5, Stats: player.SeasonStats{Goals: 5, Assists: 9}},
		{Name: "Henrik Dahl", Team: "Southbank Athletic", Season: seedSeason, Position: player.PositionMidfielder, Cost: 5.5, Stats: player.SeasonStats{Goals: 4, Assists: 5}},
		{Name: "Brice Okemba", Team: "Glenfield Town", Season: seedSeason, Position: player.PositionMidfielder, Cost: 5.0, Stats: player.SeasonStats{Goals: 3, Assists: 4}},
		{Name: "Ryo Takeda", Team: "Red Valley", Season: seedSeason, Position: player.PositionMidfielder, Cost: 4.5, Stats: player.SeasonStats{Goals: 2, Assists: 6}},
		{Name: "Viktor Lindqvist", Team: "Harbour City", Season: seedSeason, Position: player.PositionForward, Cost: 9.0, Stats: player.SeasonStats{Goals: 18, Assists: 4}},
		{Name: "Mamadou Cisse", Team: "Northgate United", Season: seedSeason, Position: player.PositionForward, Cost: 8.5, Stats: player.SeasonStats{Goals: 15, Assists: 6}},
		{Name: "Joao Ferreira", Team: "Eastmoor Rovers", Season: seedSeason, Position: player.PositionForward, Cost: 7.5, Stats: player.SeasonStats{Goals: 12, Assists: 3}},
		{Name: "Emre Yilmaz", Team: "Southbank Athletic", Season: seedSeason, Position: player.PositionForward, Cost: 6.0, Stats: player.SeasonStats{Goals: 9, Assists: 2}},
		{Name: "Callum Reid", Team: "Glenfield Town", Season: seedSeason, Position: player.PositionForward, Cost: 5.0, Stats: player.SeasonStats{Goals: 7, Assists: 1}},
		{Name: "Igor Petrov", Team: "Westport Albion", Season: seedSeason, Position: player.PositionForward, Cost: 4.0, Stats: player.SeasonStats{Goals: 5}},
	}
}
