package avapi

import (
	"time"

	"github.com/sirupsen/logrus"
)

// HandshakeTimeout is the avClientStart2 login timeout.
const HandshakeTimeout = 20 * time.Second

// Config configures a Session. Zero values select defaults.
type Config struct {
	// Channels is the number of AV channels reserved by avInitialize.
	Channels int

	// UDPPort is the local port for IOTC_Initialize; 0 picks a random one.
	UDPPort uint16

	// Masters overrides the rendezvous hostnames.
	Masters [4]string

	// LibDir is searched first when the native library is loaded. It only
	// applies until the first successful load in the process.
	LibDir string

	// IdleInterval is how long Drain waits after AV_ER_DATA_NOREADY.
	IdleInterval time.Duration

	// HeartbeatInterval is the period of the frame-rate log line.
	HeartbeatInterval time.Duration

	// SessionCheckAttempts bounds the IOTC_Session_Check polling in OpenAV.
	SessionCheckAttempts int
	// SessionCheckInterval is the pause between session checks.
	SessionCheckInterval time.Duration

	Logger logrus.FieldLogger

	// SDK overrides the native backend.
	SDK SDK
}

func (c Config) withDefaults() Config {
	if c.Channels <= 0 {
		c.Channels = 32
	}
	if c.Masters == ([4]string{}) {
		c.Masters = DefaultMasters
	}
	if c.IdleInterval <= 0 {
		c.IdleInterval = 10 * time.Millisecond
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = time.Second
	}
	if c.SessionCheckAttempts <= 0 {
		c.SessionCheckAttempts = 5
	}
	if c.SessionCheckInterval <= 0 {
		c.SessionCheckInterval = 200 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	return c
}
