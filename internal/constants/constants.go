package constants

import "time"

const (
	ExternalFetchTimeout = 30 * time.Second
	DatabaseTimeout      = 5 * time.Second
	RequestTimeout       = 30 * time.Second
	LoadTimeout          = 2 * time.Minute
)

const (
	DBMaxOpenConns    = 4
	DBMaxIdleConns    = 2
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 500
)

const (
	MaxDownloadBytes = 256 << 20
	DefaultCacheSize = 512
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	RawRowsDefaultLimit = 100
	RawRowsMaxLimit     = 1000
	SynergyMaxTopN      = 50
)

// DefaultBoots is the boots allow-list shown by the items view when the
// caller does not supply one.
var DefaultBoots = []string{
	"광전사의 군화",
	"마법사의 신발",
	"닌자의 신발",
	"헤르메스의 발걸음",
	"신속의 장화",
	"명석함의 아이오니아 장화",
	"기동력의 장화",
}
