package kafka

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"

	"kkjson/internal/document"
)

func mockedDriver(t *testing.T) (*driver, *mocks.SyncProducer) {
	t.Helper()
	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	mp := mocks.NewSyncProducer(t, sc)

	cfg := Config{Topic: "kk-docs", RunID: "run-1"}
	applyDefaults(&cfg)
	d := &driver{newProducer: func([]string, *sarama.Config) (sarama.SyncProducer, error) { return mp, nil }}
	require.NoError(t, d.Configure(cfg))
	return d, mp
}

func TestPush_SendsCompactDocument(t *testing.T) {
	d, mp := mockedDriver(t)
	var acked []string
	d.BindAck(func(name, key string) { acked = append(acked, name+":"+key) })

	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got map[string]any
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got["kk"] != "3201" {
			return errors.New("kk missing from payload")
		}
		return nil
	})

	doc := document.Document{Key: "3201", Body: document.Object{{Key: "kk", Value: "3201"}}}
	require.NoError(t, d.Push(doc))
	require.NoError(t, d.Close())
	require.Equal(t, []string{"kafka:3201"}, acked)
}

func TestPush_PropagatesBrokerError(t *testing.T) {
	d, mp := mockedDriver(t)
	mp.ExpectSendMessageAndFail(sarama.ErrNotEnoughReplicas)

	err := d.Push(document.Document{Key: "1", Body: document.Object{{Key: "kk", Value: "1"}}})
	require.ErrorIs(t, err, sarama.ErrNotEnoughReplicas)
	_ = d.Close()
}

func TestSaramaConfig_RejectsUnknownCompression(t *testing.T) {
	cfg := Config{Compression: "brotli"}
	applyDefaults(&cfg)
	_, err := saramaConfig(cfg)
	require.Error(t, err)
}
