package room

import "ashtapada/internal/game/board"

// PlayerView is the serializable projection of a seated player.
type PlayerView struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Color      board.Color `json:"color"`
	ColorIndex int         `json:"colorIndex"`
	IsHost     bool        `json:"isHost"`
	IsReady    bool        `json:"isReady"`
}

// SpectatorView is the serializable projection of a spectator.
type SpectatorView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// View is the only room data that ever reaches a client. Connection
// handles are deliberately absent.
type View struct {
	ID             string          `json:"id"`
	Players        []PlayerView    `json:"players"`
	Spectators     []SpectatorView `json:"spectators"`
	GameStarted    bool            `json:"gameStarted"`
	PlayerCount    int             `json:"playerCount"`
	SpectatorCount int             `json:"spectatorCount"`
}

func (r *Room) view() *View {
	v := &View{
		ID:             r.Code,
		Players:        make([]PlayerView, 0, len(r.Players)),
		Spectators:     make([]SpectatorView, 0, len(r.Spectators)),
		GameStarted:    r.Started,
		PlayerCount:    len(r.Players),
		SpectatorCount: len(r.Spectators),
	}
	for _, p := range r.Players {
		v.Players = append(v.Players, PlayerView{
			ID:         p.ID,
			Name:       p.Name,
			Color:      p.Color(),
			ColorIndex: p.ColorIndex,
			IsHost:     p.IsHost,
			IsReady:    p.IsReady,
		})
	}
	for _, s := range r.Spectators {
		v.Spectators = append(v.Spectators, SpectatorView{ID: s.ID, Name: s.Name})
	}
	return v
}
