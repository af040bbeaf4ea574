package repository

import (
	"context"
	"testing"

	"StockCast/internal/domain/models"
	pkgkafka "StockCast/pkg/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	topic string
	msgs  []pkgkafka.Message
}

func (r *recordingProducer) PublishBatch(_ context.Context, topic string, messages []pkgkafka.Message) error {
	r.topic = topic
	r.msgs = append(r.msgs, messages...)
	return nil
}

func (r *recordingProducer) Close() error { return nil }

func TestKafkaPublisherPublishBars(t *testing.T) {
	rec := &recordingProducer{}
	p := &KafkaPublisher{producer: rec, topic: "stock.bars"}

	require.NoError(t, p.PublishBars(context.Background(), "IBM", []models.PriceBar{
		priceBar("2024-01-05", "100", "102", 1000),
	}))
	require.Len(t, rec.msgs, 1)
	assert.Equal(t, "stock.bars", rec.topic)
	assert.Equal(t, []byte("IBM"), rec.msgs[0].Key)

	ev := rec.msgs[0].Value.(BarEvent)
	assert.Equal(t, "2024-01-05", ev.Date)
	assert.Equal(t, "IBM", ev.Symbol)
	assert.Equal(t, int64(1000), ev.Volume)

	assert.NoError(t, p.PublishBars(context.Background(), "IBM", nil))
	assert.Len(t, rec.msgs, 1)
}
