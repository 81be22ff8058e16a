package engine

import (
	"sort"
	"time"
)

// RaceResult is one completed run on the scoreboard.
type RaceResult struct {
	UserName string        `json:"userName"`
	Time     time.Duration `json:"time"`
}

// OngoingRace records a started run that has not finished yet. A player has
// at most one ongoing race.
type OngoingRace struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"startTime"`
}

// RaceTrack holds the town's in-progress races and its scoreboard, sorted
// ascending by elapsed time. The JSON shape is the wire representation
// observed by listeners and must not change.
type RaceTrack struct {
	ScoreBoard   []RaceResult  `json:"scoreBoard"`
	OngoingRaces []OngoingRace `json:"ongoingRaces"`
}

func newRaceTrack() *RaceTrack {
	return &RaceTrack{
		ScoreBoard:   []RaceResult{},
		OngoingRaces: []OngoingRace{},
	}
}

// start records a race start for the player, replacing any stale entry with
// the same ID. Callers hold the town lock.
func (rt *RaceTrack) start(playerID string, startTime time.Time) {
	rt.remove(playerID)
	rt.OngoingRaces = append(rt.OngoingRaces, OngoingRace{ID: playerID, StartTime: startTime})
}

// finish completes the player's ongoing race: removes its entry, appends a
// scoreboard record with the elapsed time, and re-sorts the board ascending.
// The sort is stable so equal times keep their finish order. A player with
// no ongoing race is a no-op and finish reports ok=false.
func (rt *RaceTrack) finish(player *Player, finishTime time.Time) (RaceResult, bool) {
	for _, race := range rt.OngoingRaces {
		if race.ID != player.ID() {
			continue
		}
		rt.remove(player.ID())
		result := RaceResult{UserName: player.UserName(), Time: finishTime.Sub(race.StartTime)}
		rt.ScoreBoard = append(rt.ScoreBoard, result)
		sort.SliceStable(rt.ScoreBoard, func(i, j int) bool {
			return rt.ScoreBoard[i].Time < rt.ScoreBoard[j].Time
		})
		return result, true
	}
	return RaceResult{}, false
}

func (rt *RaceTrack) remove(playerID string) {
	for i, race := range rt.OngoingRaces {
		if race.ID == playerID {
			rt.OngoingRaces = append(rt.OngoingRaces[:i], rt.OngoingRaces[i+1:]...)
			return
		}
	}
}

// copy returns a snapshot safe to serialize outside the town lock.
func (rt *RaceTrack) copy() RaceTrack {
	board := make([]RaceResult, len(rt.ScoreBoard))
	copy(board, rt.ScoreBoard)
	ongoing := make([]OngoingRace, len(rt.OngoingRaces))
	copy(ongoing, rt.OngoingRaces)
	return RaceTrack{ScoreBoard: board, OngoingRaces: ongoing}
}
