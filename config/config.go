package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

// Config es la configuración completa del monitor.
type Config struct {
	Monitor    MonitorConfig     `yaml:"monitor"`
	ESPN       ESPNConfig        `yaml:"espn"`
	Odds       OddsConfig        `yaml:"odds"`
	Stats      StatsConfig       `yaml:"stats"`
	Thresholds domain.Thresholds `yaml:"thresholds"`
	Confidence ConfidenceConfig  `yaml:"confidence"`
	Analyzer   AnalyzerConfig    `yaml:"analyzer"`
	Storage    StorageConfig     `yaml:"storage"`
	Redis      RedisConfig       `yaml:"redis"`
	Log        LogConfig         `yaml:"log"`
}

// MonitorConfig controla el ciclo de monitoreo en vivo.
type MonitorConfig struct {
	Sport               string  `yaml:"sport"` // ncaab | nba
	IntervalSeconds     int     `yaml:"interval_seconds"`
	IdleShutdownSeconds int     `yaml:"idle_shutdown_seconds"` // kill switch sin partidos en vivo
	AlertConfidence     float64 `yaml:"alert_confidence"`      // banner de confianza excepcional
	RealtimeConfidence  float64 `yaml:"realtime_confidence"`   // publicar update sin disparo
}

// ESPNConfig contiene el acceso al feed en vivo.
type ESPNConfig struct {
	BaseURL        string  `yaml:"base_url"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// OddsConfig contiene el acceso al proveedor de cuotas. Sin APIKey el
// monitor usa las líneas del propio feed como respaldo.
type OddsConfig struct {
	BaseURL        string  `yaml:"base_url"`
	APIKey         string  `yaml:"api_key"` // secreto: ODDS_API_KEY
	Regions        string  `yaml:"regions"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// StatsConfig contiene la fuente de métricas de temporada y su caché.
type StatsConfig struct {
	RatingsURL     string `yaml:"ratings_url"`
	RefreshHours   int    `yaml:"refresh_hours"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ConfidenceConfig controla la puntuación: pesos de factores, revisión de
// severidad PPM y bandas de unidades.
type ConfidenceConfig struct {
	SeverityProfile string            `yaml:"severity_profile"` // balanced | legacy
	Weights         domain.Weights    `yaml:"weights"`
	UnitBands       []domain.UnitBand `yaml:"unit_bands"`
}

// AnalyzerConfig controla el barrido retrospectivo de umbrales.
type AnalyzerConfig struct {
	SweepMin  float64 `yaml:"sweep_min"`
	SweepMax  float64 `yaml:"sweep_max"`
	SweepStep float64 `yaml:"sweep_step"`
	MinSample int     `yaml:"min_sample"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	Driver        string `yaml:"driver"` // sqlite | postgres
	DSN           string `yaml:"dsn"`    // ruta SQLite (o ":memory:") / DSN postgres
	RetentionDays int    `yaml:"retention_days"`
}

// RedisConfig controla la difusión de decisiones en tiempo real.
type RedisConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Addr             string `yaml:"addr"`
	Password         string `yaml:"password"` // secreto: REDIS_PASSWORD
	DB               int    `yaml:"db"`
	Stream           string `yaml:"stream"`
	LatestTTLSeconds int    `yaml:"latest_ttl_seconds"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	// Pesos, bandas y umbrales se siembran antes del parseo para que un
	// YAML parcial sobreescriba campo a campo en vez de dejar ceros.
	var cfg Config
	cfg.Thresholds = domain.DefaultThresholds()
	cfg.Confidence.Weights = domain.DefaultWeights()
	cfg.Confidence.UnitBands = domain.DefaultUnitBands()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Sport devuelve el deporte configurado como valor de dominio.
func (c *Config) Sport() domain.Sport {
	if c.Monitor.Sport == "nba" {
		return domain.SportNBA
	}
	return domain.SportNCAAB
}

// PollInterval devuelve el intervalo entre ciclos como time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Monitor.IntervalSeconds) * time.Second
}

// IdleShutdown devuelve la ventana del kill switch como time.Duration.
func (c *Config) IdleShutdown() time.Duration {
	return time.Duration(c.Monitor.IdleShutdownSeconds) * time.Second
}

// StatsTTL devuelve la validez de la caché de métricas como time.Duration.
func (c *Config) StatsTTL() time.Duration {
	return time.Duration(c.Stats.RefreshHours) * time.Hour
}

// Retention devuelve la antigüedad máxima de polls antes de podarse.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Storage.RetentionDays) * 24 * time.Hour
}

// Validate revisa valores que el operador puede haber dejado inconsistentes.
func (c *Config) Validate() error {
	switch c.Monitor.Sport {
	case "ncaab", "nba":
	default:
		return fmt.Errorf("config.Validate: unknown sport %q", c.Monitor.Sport)
	}
	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config.Validate: unknown storage driver %q", c.Storage.Driver)
	}
	if _, ok := domain.SeverityProfileByName(c.Confidence.SeverityProfile); !ok {
		return fmt.Errorf("config.Validate: unknown severity profile %q", c.Confidence.SeverityProfile)
	}
	if c.Thresholds.PPMUnder <= 0 || c.Thresholds.PPMOver <= 0 || c.Thresholds.PPMDifference <= 0 {
		return fmt.Errorf("config.Validate: thresholds must be positive")
	}
	for _, b := range c.Confidence.UnitBands {
		if b.Min > b.Max || b.Min < 0 || b.Max > 100 {
			return fmt.Errorf("config.Validate: unit band [%g, %g] out of range", b.Min, b.Max)
		}
	}
	if c.Analyzer.SweepMin >= c.Analyzer.SweepMax || c.Analyzer.SweepStep <= 0 {
		return fmt.Errorf("config.Validate: sweep range [%g, %g] step %g invalid",
			c.Analyzer.SweepMin, c.Analyzer.SweepMax, c.Analyzer.SweepStep)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config.Validate: redis enabled without addr")
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PACEBOT_SPORT"); v != "" {
		cfg.Monitor.Sport = v
	}
	if v := os.Getenv("PACEBOT_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("ODDS_API_KEY"); v != "" {
		cfg.Odds.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Monitor.Sport == "" {
		cfg.Monitor.Sport = "ncaab"
	}
	if cfg.Monitor.IntervalSeconds <= 0 {
		cfg.Monitor.IntervalSeconds = 60
	}
	if cfg.Monitor.IdleShutdownSeconds <= 0 {
		cfg.Monitor.IdleShutdownSeconds = 300
	}
	if cfg.Monitor.AlertConfidence <= 0 {
		cfg.Monitor.AlertConfidence = 85
	}
	if cfg.Monitor.RealtimeConfidence <= 0 {
		cfg.Monitor.RealtimeConfidence = 40
	}
	if cfg.ESPN.BaseURL == "" {
		cfg.ESPN.BaseURL = "https://site.api.espn.com/apis/site/v2/sports/basketball"
	}
	if cfg.ESPN.RequestsPerSec <= 0 {
		cfg.ESPN.RequestsPerSec = 5
	}
	if cfg.ESPN.TimeoutSeconds <= 0 {
		cfg.ESPN.TimeoutSeconds = 10
	}
	if cfg.Odds.BaseURL == "" {
		cfg.Odds.BaseURL = "https://api.the-odds-api.com"
	}
	if cfg.Odds.Regions == "" {
		cfg.Odds.Regions = "us"
	}
	if cfg.Odds.RequestsPerSec <= 0 {
		cfg.Odds.RequestsPerSec = 1
	}
	if cfg.Odds.TimeoutSeconds <= 0 {
		cfg.Odds.TimeoutSeconds = 10
	}
	if cfg.Stats.RatingsURL == "" {
		cfg.Stats.RatingsURL = "https://kenpom.com/"
	}
	if cfg.Stats.RefreshHours <= 0 {
		cfg.Stats.RefreshHours = 24
	}
	if cfg.Stats.TimeoutSeconds <= 0 {
		cfg.Stats.TimeoutSeconds = 15
	}
	if cfg.Confidence.SeverityProfile == "" {
		cfg.Confidence.SeverityProfile = "balanced"
	}
	if cfg.Analyzer.SweepMin <= 0 {
		cfg.Analyzer.SweepMin = 0.5
	}
	if cfg.Analyzer.SweepMax <= 0 {
		cfg.Analyzer.SweepMax = 10.0
	}
	if cfg.Analyzer.SweepStep <= 0 {
		cfg.Analyzer.SweepStep = 0.1
	}
	if cfg.Analyzer.MinSample <= 0 {
		cfg.Analyzer.MinSample = 10
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "pacebot.db"
	}
	if cfg.Storage.RetentionDays <= 0 {
		cfg.Storage.RetentionDays = 90
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.Stream == "" {
		cfg.Redis.Stream = "pace.decisions"
	}
	if cfg.Redis.LatestTTLSeconds <= 0 {
		cfg.Redis.LatestTTLSeconds = 300
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
