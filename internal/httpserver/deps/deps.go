package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/marks/internal/auth"
	"github.com/MrSnakeDoc/marks/internal/ingest"
	"github.com/MrSnakeDoc/marks/internal/logger"
	"github.com/MrSnakeDoc/marks/internal/store/sqlite"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	AllowedHosts []string // Host headers allowed to reach /api
	AllowedCIDRS []string // IPs allowed to access healthz/readyz/infra endpoints
	TrustProxy   bool     // true if running behind a trusted reverse proxy
	CORSOrigins  []string // browser origins allowed to call /api

	RateLimitBurst     int // bookmark writes per client IP, burst
	RateLimitPerMinute int // bookmark writes per client IP, refill

	DB          *sqlite.DB
	RedisClient *redis.Client // nil when locks are in-process
	Bookmarks   *sqlite.BookmarkStore
	Collections *sqlite.CollectionStore
	Ingest      *ingest.Service
	Verifier    *auth.Verifier
}
