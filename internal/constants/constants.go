package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultHTTPTimeout = 10 * time.Second
)

const (
	CacheKeyItemMapping = "ge:mapping"
	CacheKeyPricePrefix = "ge:price:"
	CacheKeyQuestList   = "wiki:quests"
)

const (
	DefaultClanChatTopic     = "clan_chat_messages"
	DefaultNotificationTopic = "broadcast_notifications"
	DefaultJobsTopic         = "herald_jobs"
)

const (
	DefaultMongoDBName = "herald"
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

const (
	ItemMappingTTL = 7 * 24 * time.Hour
	QuestListTTL   = 7 * 24 * time.Hour
	ItemPriceTTL   = 5 * time.Minute
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)
