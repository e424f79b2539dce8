package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/tbxark/reliefwizard/attachment"
)

type Config struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`

	Endpoint  string `json:"endpoint"`
	RedisAddr string `json:"redis_addr"`

	MaxAttachments    int      `json:"max_attachments"`
	MaxAttachmentSize int64    `json:"max_attachment_size"`
	Accept            []string `json:"accept"`

	ReporterName  string `json:"reporter_name"`
	ReporterEmail string `json:"reporter_email"`

	LogLevel string `json:"log_level"`
}

func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conf Config
	err = sonic.Unmarshal(file, &conf)
	if err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *Config) attachmentConfig() attachment.Config {
	return attachment.Config{
		Accept:         c.Accept,
		MaxSize:        c.MaxAttachmentSize,
		MaxAttachments: c.MaxAttachments,
	}
}

func (c *Config) level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
