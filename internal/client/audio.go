package client

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// AudioState is the playback state of one reply's audio.
type AudioState int

const (
	AudioIdle AudioState = iota
	AudioPlaying
	AudioEnded
)

func (s AudioState) String() string {
	switch s {
	case AudioIdle:
		return "idle"
	case AudioPlaying:
		return "playing"
	case AudioEnded:
		return "ended"
	default:
		return fmt.Sprintf("AudioState(%d)", int(s))
	}
}

// ErrNoAudio is returned when there is nothing to play.
var ErrNoAudio = errors.New("no audio available")

// Playback is one running playback started by a Player.
type Playback interface {
	// Stop halts playback. It must be safe to call after playback ended.
	Stop()
	// Done is closed when playback stops for any reason.
	Done() <-chan struct{}
}

// Player turns decoded audio bytes into sound.
type Player interface {
	Play(audio []byte) (Playback, error)
}

// Audio is the decoded audio of one rendered reply.
type Audio struct {
	ID   string
	Data []byte

	deck  *Deck
	state AudioState
}

// State returns the current playback state.
func (a *Audio) State() AudioState {
	a.deck.mu.Lock()
	defer a.deck.mu.Unlock()
	return a.state
}

// Deck owns the single active audio handle. Starting playback always stops
// and rewinds whatever is playing first; a playback that ends on its own
// releases the handle.
type Deck struct {
	mu       sync.Mutex
	player   Player
	current  *Audio
	playback Playback
}

// NewDeck creates a deck playing through player.
func NewDeck(player Player) *Deck {
	return &Deck{player: player}
}

// Load wraps decoded audio bytes in an idle Audio owned by this deck.
func (d *Deck) Load(data []byte) *Audio {
	return &Audio{ID: uuid.NewString(), Data: data, deck: d}
}

// Play starts a, stopping the current playback first.
func (d *Deck) Play(a *Audio) error {
	if a == nil || len(a.Data) == 0 {
		return ErrNoAudio
	}
	if d.player == nil {
		return errors.New("no audio player configured")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()

	pb, err := d.player.Play(a.Data)
	if err != nil {
		return fmt.Errorf("start playback: %w", err)
	}

	a.state = AudioPlaying
	d.current = a
	d.playback = pb
	go d.watch(a, pb)
	return nil
}

// Stop halts and releases the current playback, if any.
func (d *Deck) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Current returns the audio holding the handle, or nil.
func (d *Deck) Current() *Audio {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// stopLocked 停止并倒带，音频回到 Idle 可再次播放
func (d *Deck) stopLocked() {
	if d.current == nil {
		return
	}
	d.playback.Stop()
	d.current.state = AudioIdle
	d.current = nil
	d.playback = nil
}

func (d *Deck) watch(a *Audio, pb Playback) {
	<-pb.Done()

	d.mu.Lock()
	defer d.mu.Unlock()
	// 已被新的播放替换或被主动停止
	if d.playback != pb {
		return
	}
	a.state = AudioEnded
	d.current = nil
	d.playback = nil
	log.Printf("[client] audio %s ended", a.ID)
}
