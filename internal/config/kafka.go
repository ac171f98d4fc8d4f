package config

import (
	"kkjson/sink/kafka"
)

// LoadKafkaConfig delegates to the Kafka sink loader while centralizing
// loader entrypoints under internal/config.
func LoadKafkaConfig(path string) (kafka.Config, error) {
	return kafka.LoadConfig(path)
}
