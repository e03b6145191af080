// Package presence mirrors the playing station into Discord rich presence.
package presence

import (
	"strings"
	"sync"
	"time"

	"github.com/babycommando/rich-go/client"
	"go.uber.org/zap"

	"github.com/babycommando/afroradio/internal/station"
)

// activityListening is Discord's "Listening to" activity type.
const activityListening = 2

const (
	LargeImage = "afroradio"
	SmallImage = "radio"
)

// RPC is the slice of the rich-go client the presence uses.
type RPC interface {
	Login(appID string) error
	SetActivity(a client.Activity) error
	Logout()
}

type richGo struct{}

func (richGo) Login(appID string) error            { return client.Login(appID) }
func (richGo) SetActivity(a client.Activity) error { return client.SetActivity(a) }
func (richGo) Logout()                             { client.Logout() }

// Discord is safe to use with presence disabled; every call is then a no-op.
type Discord struct {
	rpc RPC
	log *zap.Logger
	now func() time.Time

	mu      sync.Mutex
	enabled bool
}

// Connect logs in with appID over the local Discord IPC socket. An empty
// appID or a failed login yields a disabled presence.
func Connect(appID string, logger *zap.Logger) *Discord {
	return connect(richGo{}, appID, logger)
}

func connect(rpc RPC, appID string, logger *zap.Logger) *Discord {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Discord{rpc: rpc, log: logger.Named("presence"), now: time.Now}
	if appID == "" {
		return d
	}
	if err := rpc.Login(appID); err != nil {
		d.log.Warn("discord rpc unavailable, presence disabled", zap.Error(err))
		return d
	}
	d.enabled = true
	return d
}

func (d *Discord) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

// NowPlaying shows "Listening to <station>" with the country as state.
func (d *Discord) NowPlaying(st station.Station) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.enabled {
		return
	}

	now := d.now()
	act := client.Activity{
		Type:       activityListening,
		Details:    "Listening to " + st.Name,
		State:      st.Country,
		LargeImage: LargeImage,
		SmallImage: SmallImage,
		LargeText:  st.Description(),
		Timestamps: &client.Timestamps{
			Start: &now,
		},
	}
	if home := strings.TrimSpace(st.Homepage); strings.HasPrefix(home, "http") {
		act.Buttons = []*client.Button{{
			Label: "Visit " + st.Name,
			Url:   home,
		}}
	}
	if err := d.rpc.SetActivity(act); err != nil {
		d.log.Warn("failed to set activity", zap.String("station", st.Name), zap.Error(err))
	}
}

// Clear removes the activity.
func (d *Discord) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.enabled {
		return
	}
	if err := d.rpc.SetActivity(client.Activity{}); err != nil {
		d.log.Debug("failed to clear activity", zap.Error(err))
	}
}

func (d *Discord) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.enabled {
		return
	}
	d.rpc.Logout()
	d.enabled = false
}
