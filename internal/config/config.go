package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
	StorageSQLite = "sqlite"
)

type Config struct {
	Env      string `yaml:"env" env:"ENV" env-default:"local"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env:"TELEGRAM_API_KEY" env-default:""`
		BotName string `yaml:"bot_name" env-default:"ChatBot"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	OpenAI struct {
		ApiKey   string `yaml:"api_key" env:"OPENAI_API_KEY" env-default:""`
		Model    string `yaml:"model" env-default:"gpt-4o-mini"`
		Prompt   string `yaml:"prompt" env-default:"You are a helpful hotel concierge. Answer briefly."`
		Fallback string `yaml:"fallback" env-default:"openai answer"`
	} `yaml:"openai"`
	Storage struct {
		Driver     string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
		SQLitePath string `yaml:"sqlite_path" env-default:"data/chatbot.db"`
	} `yaml:"storage"`
	Mongo struct {
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:""`
		Password string `yaml:"password" env-default:""`
		Database string `yaml:"database" env-default:"chatbot"`
	} `yaml:"mongo"`
	Reservation struct {
		LinkURL     string `yaml:"link_url" env-default:"https://uat.windsurfercrs.com/admin"`
		MaxAttempts int    `yaml:"max_attempts" env-default:"0"`
	} `yaml:"reservation"`
	Greeting struct {
		Welcome  string `yaml:"welcome" env-default:"Hi, it's great to see you!"`
		Question string `yaml:"question" env-default:"What information are you looking for?"`
	} `yaml:"greeting"`
	References struct {
		TTL time.Duration `yaml:"ttl" env-default:"0s"`
	} `yaml:"references"`
	Notify struct {
		Message string `yaml:"message" env-default:"proactive hello"`
	} `yaml:"notify"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"3978"`
		ApiKey string `yaml:"key" env:"API_KEY" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

// MustLoad reads the YAML file at path, or only the environment when there is no such file.
func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			if instance, err = Defaults(); err != nil {
				log.Fatal(err)
			}
			return
		}
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}

// Defaults returns a config populated only from env-default tags and the environment.
func Defaults() (*Config, error) {
	conf := &Config{}
	if err := cleanenv.ReadEnv(conf); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return conf, nil
}
