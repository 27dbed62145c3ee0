package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации в exchange уведомлений.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// RoutingKeyActivated — ключ маршрутизации сообщений об активации подписки.
const RoutingKeyActivated = "subscription.activated"

// GetNotificationQueues возвращает очереди, которые объявляет сервис.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.subscription.activated", RoutingKey: RoutingKeyActivated},
	}
}
