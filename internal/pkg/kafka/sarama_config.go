package kafka

import (
	"AmineForum/internal/api/config"
	"time"

	"github.com/IBM/sarama"
)

// newSaramaConfig 领域事件只追加不回放，按 key 分区保证同一帖子/用户的事件有序
func newSaramaConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()
	c.ClientID = "amine-forum"

	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}

	c.Producer.RequiredAcks = sarama.WaitForLocal
	c.Producer.Partitioner = sarama.NewHashPartitioner
	c.Producer.Compression = sarama.CompressionSnappy
	c.Producer.Retry.Max = 3
	c.Producer.Flush.Frequency = 200 * time.Millisecond
	c.Producer.Return.Successes = false
	c.Producer.Return.Errors = true

	return c
}
