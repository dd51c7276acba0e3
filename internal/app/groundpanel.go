package app

import (
	"fmt"
	"image"
	"net/http"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/nyx-sat/acsd/internal/sysconfig"
	"github.com/nyx-sat/acsd/internal/telemetry"
)

// pollInterval bounds how often the OLED/websocket loops check for a
// fresh frame — fast enough to feel live, slow enough not to spin.
const pollInterval = 50 * time.Millisecond

// panelState is the most recently received telemetry frame, shared
// between the MQTT subscriber, the OLED refresh loop, and the
// websocket handler — the same last-known-value snapshot pattern the
// teacher's web app uses for every sensor stream.
type panelState struct {
	mu    sync.RWMutex
	frame telemetry.Frame
	have  bool
}

func (p *panelState) set(f telemetry.Frame) {
	p.mu.Lock()
	p.frame, p.have = f, true
	p.mu.Unlock()
}

func (p *panelState) get() (telemetry.Frame, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.frame, p.have
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RunGroundPanel subscribes to the ACS telemetry topic and mirrors it
// onto a bench OLED display and a live websocket feed — a ground/bench
// tool, never flown, used to watch the control loop during integration
// testing.
func RunGroundPanel() error {
	cfg := sysconfig.Get()
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.InfoLevel})

	state := &panelState{}

	opts := mqtt.NewClientOptions().AddBroker(cfg.MQTTBroker).SetClientID(cfg.MQTTClientID + "-panel")
	opts.SetDefaultPublishHandler(func(c mqtt.Client, m mqtt.Message) {
		f, err := telemetry.Decode(m.Payload())
		if err != nil {
			logger.Warn("groundpanel: malformed telemetry frame", "err", err)
			return
		}
		state.set(f)
	})
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("groundpanel: mqtt connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	if token := client.Subscribe(cfg.TopicTelemetry, 0, nil); token.Wait() && token.Error() != nil {
		return fmt.Errorf("groundpanel: mqtt subscribe: %w", token.Error())
	}

	if err := startOLED(state, logger); err != nil {
		logger.Warn("groundpanel: OLED unavailable, continuing with websocket only", "err", err)
	}

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(w, r, state, logger)
	})
	logger.Info("groundpanel: serving websocket feed on :8090/ws")
	return http.ListenAndServe(":8090", nil)
}

func startOLED(state *panelState, logger *log.Logger) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph init: %w", err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("open i2c bus: %w", err)
	}
	const oledAddr = 0x3C // standard SSD1306 bench-panel address
	dev, err := ssd1306.NewI2C(bus, oledAddr, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("ssd1306 init: %w", err)
	}

	go func() {
		for f := range tickerFrames(state) {
			if err := drawFrame(dev, f); err != nil {
				logger.Warn("groundpanel: draw failed", "err", err)
			}
		}
	}()
	return nil
}

// tickerFrames polls state for new frames; it is a simple generator so
// the draw loop stays in drawFrame's own goroutine.
func tickerFrames(state *panelState) <-chan telemetry.Frame {
	out := make(chan telemetry.Frame)
	go func() {
		var lastTick uint64
		for {
			f, have := state.get()
			if have && f.Tick != lastTick {
				lastTick = f.Tick
				out <- f
			}
			time.Sleep(pollInterval)
		}
	}()
	return out
}

func drawFrame(dev *ssd1306.Dev, f telemetry.Frame) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	drawer.Dot = fixed.P(0, 13)
	drawer.DrawString(fmt.Sprintf("mode %d tick %d", f.Mode, f.Tick))
	drawer.Dot = fixed.P(0, 26)
	drawer.DrawString(fmt.Sprintf("B  %.1f %.1f %.1f", f.B[0], f.B[1], f.B[2]))
	drawer.Dot = fixed.P(0, 39)
	drawer.DrawString(fmt.Sprintf("W  %.3f %.3f %.3f", f.W[0], f.W[1], f.W[2]))
	drawer.Dot = fixed.P(0, 52)
	drawer.DrawString(fmt.Sprintf("S  %.2f %.2f %.2f", f.S[0], f.S[1], f.S[2]))
	return dev.Draw(img.Bounds(), img, image.Point{})
}

func serveWS(w http.ResponseWriter, r *http.Request, state *panelState, logger *log.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("groundpanel: websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	var lastTick uint64
	for {
		f, have := state.get()
		if have && f.Tick != lastTick {
			lastTick = f.Tick
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		}
		time.Sleep(pollInterval)
	}
}
