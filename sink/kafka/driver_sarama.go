// Package kafka publishes household documents to a Kafka topic, keyed by
// household identifier so every version of a household lands on the same
// partition.
package kafka

import (
	"fmt"

	"github.com/IBM/sarama"

	"kkjson/internal/document"
	"kkjson/internal/logging"
	"kkjson/sink"
)

type producerFactory func(brokers []string, sc *sarama.Config) (sarama.SyncProducer, error)

type driver struct {
	cfg Config
	p   sarama.SyncProducer
	ack sink.EmitFn

	newProducer producerFactory
}

func (d *driver) Configure(c any) error {
	cfg, ok := c.(Config)
	if !ok {
		return fmt.Errorf("kafka-sink: want Config, got %T", c)
	}
	d.cfg = cfg

	sc, err := saramaConfig(cfg)
	if err != nil {
		return fmt.Errorf("kafka-sink: %w", err)
	}
	if d.newProducer == nil {
		d.newProducer = sarama.NewSyncProducer
	}
	d.p, err = d.newProducer(cfg.Brokers, sc)
	if err != nil {
		return fmt.Errorf("kafka-sink: %w", err)
	}
	logging.L().Info("kafka sink connected", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return nil
}

func saramaConfig(cfg Config) (*sarama.Config, error) {
	ver, err := sarama.ParseKafkaVersion(cfg.Version)
	if err != nil {
		return nil, err
	}
	sc := sarama.NewConfig()
	sc.Version = ver
	sc.ClientID = cfg.ClientID
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Acks)
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.Retry.Max = cfg.MaxRetries
	sc.Producer.Timeout = cfg.Timeout
	sc.Net.DialTimeout = cfg.Timeout
	if cfg.MaxMsgBytes > 0 {
		sc.Producer.MaxMessageBytes = cfg.MaxMsgBytes
	}
	if cfg.TLSEn {
		sc.Net.TLS.Enable = true
	}
	if cfg.SASLUser != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User, sc.Net.SASL.Password = cfg.SASLUser, cfg.SASLPass
	}
	switch cfg.Compression {
	case "none", "":
		sc.Producer.Compression = sarama.CompressionNone
	case "gzip":
		sc.Producer.Compression = sarama.CompressionGZIP
	case "snappy":
		sc.Producer.Compression = sarama.CompressionSnappy
	case "lz4":
		sc.Producer.Compression = sarama.CompressionLZ4
	case "zstd":
		sc.Producer.Compression = sarama.CompressionZSTD
	default:
		return nil, fmt.Errorf("unknown compression %q", cfg.Compression)
	}
	return sc, sc.Validate()
}

// Push sends one document synchronously and waits for the broker ack.
func (d *driver) Push(doc document.Document) error {
	value, err := doc.Body.MarshalJSON()
	if err != nil {
		return fmt.Errorf("kafka-sink: encode %s: %w", doc.Key, err)
	}
	msg := &sarama.ProducerMessage{
		Topic: d.cfg.Topic,
		Key:   sarama.StringEncoder(doc.Key),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("content-type"), Value: []byte("application/json")},
		},
	}
	if d.cfg.RunID != "" {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte("run-id"), Value: []byte(d.cfg.RunID)})
	}
	part, off, err := d.p.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("kafka-sink: send %s: %w", doc.Key, err)
	}
	logging.L().Debug("kafka sink delivered", "kk", doc.Key, "partition", part, "offset", off)
	if d.ack != nil {
		d.ack("kafka", doc.Key)
	}
	return nil
}

func (d *driver) Close() error {
	if d.p == nil {
		return nil
	}
	err := d.p.Close()
	d.p = nil
	return err
}

/* ────────── sink.AckAware ────────── */
func (d *driver) BindAck(fn sink.EmitFn) { d.ack = fn }

func init() { sink.Register("kafka", func() sink.Adapter { return &driver{} }) }
