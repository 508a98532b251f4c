package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации для её привязки.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetDispatchQueues возвращает очереди событий рассылки.
func GetDispatchQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "dispatch_report_queue", RoutingKey: "report"},
	}
}
