package infra

import "fmt"

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "guiajuridico"
)

// Ключи клиентского хранилища (аналог localStorage браузера)
const (
	StorageKeyAuthToken = "authToken"
	StorageKeyUserInfo  = "userInfo"
	StorageKeyFlash     = "flash"
)

// ClientStateKey — ключ Redis для значения конкретного клиента
func ClientStateKey(clientID, key string) string {
	return fmt.Sprintf("%s:client:%s:%s", RedisNamespace, clientID, key)
}
