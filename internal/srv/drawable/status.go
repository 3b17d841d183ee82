package drawable

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/jypelle/oledpi/internal/srv/screen"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

const (
	statusRefreshFrames = 15
	statusFrameTimeout  = 450
	// readings older than this mean the measure job stopped running
	staleReading = 12 * time.Minute
)

type SystemStats struct {
	Load1       float64
	MemoryUsed  float64
	DiskUsed    float64
	Uptime      time.Duration
	LastReading time.Time
}

type StatsFunc func(ctx context.Context) (SystemStats, error)

// HostStats reads the statistics of the machine and the age of the latest
// sensor reading.
func HostStats(sensors SensorStore) StatsFunc {
	return func(ctx context.Context) (SystemStats, error) {
		var stats SystemStats
		avg, err := load.AvgWithContext(ctx)
		if err != nil {
			return stats, fmt.Errorf("unable to read load: %w", err)
		}
		stats.Load1 = avg.Load1

		vm, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			return stats, fmt.Errorf("unable to read memory: %w", err)
		}
		stats.MemoryUsed = vm.UsedPercent

		usage, err := disk.UsageWithContext(ctx, "/")
		if err != nil {
			return stats, fmt.Errorf("unable to read disk usage: %w", err)
		}
		stats.DiskUsed = usage.UsedPercent

		uptime, err := host.UptimeWithContext(ctx)
		if err != nil {
			return stats, fmt.Errorf("unable to read uptime: %w", err)
		}
		stats.Uptime = time.Duration(uptime) * time.Second

		if sensors != nil {
			if reading, err := sensors.Latest(ctx); err == nil {
				stats.LastReading = reading.Time
			}
		}
		return stats, nil
	}
}

// Status shows host health, refreshed every second.
type Status struct {
	stats StatsFunc
	clock clockwork.Clock
}

func NewStatus(stats StatsFunc, clock clockwork.Clock) *Status {
	return &Status{stats: stats, clock: clock}
}

func (s *Status) Id() string {
	return "status"
}

func (s *Status) NewDrawable() screen.Drawable {
	return &statusDraw{Status: s}
}

type statusDraw struct {
	screen.Base
	*Status
	frames int
}

func (d *statusDraw) Draw(c screen.Canvas, rng *rand.Rand) (bool, error) {
	frame := d.frames
	d.frames++
	if frame%statusRefreshFrames != 0 {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	stats, err := d.stats(ctx)
	if err != nil {
		return true, err
	}

	c.Clear(screen.Black)
	AddCenteredLabel(c, mediumFace, 14, "status", screen.White)
	AddLabel(c, mediumFace, 2, 36, fmt.Sprintf("load %.2f", stats.Load1), screen.White)
	AddLabel(c, mediumFace, 2, 52, fmt.Sprintf("mem  %.0f%%", stats.MemoryUsed), screen.White)
	AddLabel(c, mediumFace, 2, 68, fmt.Sprintf("disk %.0f%%", stats.DiskUsed), screen.White)
	AddLabel(c, mediumFace, 2, 84, "up   "+formatUptime(stats.Uptime), screen.White)

	sensorText, sensorColor := "sensor stale", screen.RGB565(0x1f, 0, 0)
	if !stats.LastReading.IsZero() && d.clock.Since(stats.LastReading) <= staleReading {
		sensorText, sensorColor = "sensor ok", screen.RGB565(0, 0x3f, 0)
	}
	AddLabel(c, mediumFace, 2, 108, sensorText, sensorColor)
	return true, nil
}

func (d *statusDraw) Expired() bool {
	return d.frames > statusFrameTimeout
}

func formatUptime(uptime time.Duration) string {
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd%dh", days, hours)
	}
	return fmt.Sprintf("%dh%02dm", hours, minutes)
}
