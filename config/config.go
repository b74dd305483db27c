package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging   LoggingConfig   `yaml:"logging"`
	LLM       LLMConfig       `yaml:"llm"`
	Vision    VisionConfig    `yaml:"vision"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Server    ServerConfig    `yaml:"server"`

	// Secrets and deployment values, populated from the environment
	// (.env in development) rather than config.yaml.
	RapidAPIKey      string `yaml:"-"`
	DeepSeekAPIKey   string `yaml:"-"`
	GeminiAPIKey     string `yaml:"-"`
	OpenRouterAPIKey string `yaml:"-"`
	NotionAPIKey     string `yaml:"-"`
	NotionDatabaseID string `yaml:"-"`
	SiteURL          string `yaml:"-"`
	SiteName         string `yaml:"-"`
	MongoURI         string `yaml:"-"`
	MongoDBName      string `yaml:"-"`
	InstagramUser    string `yaml:"-"`
	InstagramPass    string `yaml:"-"`
	InboxBridgeURL   string `yaml:"-"`
	InboxBridgeToken string `yaml:"-"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LLMConfig selects the chat-completion backend used for summaries.
// Provider is "deepseek" (OpenAI-compatible API) or "google" (Gemini).
type LLMConfig struct {
	Provider  string `yaml:"provider"`
	ModelName string `yaml:"model_name"`
	MaxTokens int    `yaml:"max_tokens"`
}

// VisionConfig controls the image analysis call.
// MaxImages is the hard cap on how many post images are sent per request.
type VisionConfig struct {
	ModelName string `yaml:"model_name"`
	MaxImages int    `yaml:"max_images"`
}

type MonitorConfig struct {
	// IntervalSeconds is the DM polling period. 0 falls back to 30.
	IntervalSeconds int    `yaml:"interval_seconds"`
	StateFile       string `yaml:"state_file"`
	ThreadAmount    int    `yaml:"thread_amount"`
}

type ExtractorConfig struct {
	// TimeoutSeconds bounds a single provider attempt. 0 falls back to 15.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}

	c.RapidAPIKey = os.Getenv("RAPID_API_KEY")
	c.DeepSeekAPIKey = os.Getenv("DEEPSEEK_API_KEY")
	c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	c.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
	c.NotionAPIKey = os.Getenv("NOTION_API_KEY")
	c.NotionDatabaseID = os.Getenv("NOTION_DATABASE_ID")
	c.SiteURL = os.Getenv("SITE_URL")
	c.SiteName = os.Getenv("SITE_NAME")
	c.MongoURI = os.Getenv("MONGO_URI")
	c.MongoDBName = os.Getenv("MONGO_DB_NAME")
	c.InstagramUser = os.Getenv("INSTAGRAM_USERNAME")
	c.InstagramPass = os.Getenv("INSTAGRAM_PASSWORD")
	c.InboxBridgeURL = os.Getenv("INBOX_BRIDGE_URL")
	c.InboxBridgeToken = os.Getenv("INBOX_BRIDGE_TOKEN")

	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
