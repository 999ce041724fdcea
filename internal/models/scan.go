// Package models содержит доменные структуры, описывающие запрос на сканирование,
// а также вспомогательные типы для работы с данными из внешних источников (JSON-запросы).
package models

import (
	"encoding/json"
	"time"
)

// Типы целей сканирования.
const (
	TargetTypeDomain = "domain"
	TargetTypeIP     = "ip"
)

// ScanStatusPending — статус, с которым создаётся каждый запрос на сканирование.
// Дальнейших переходов статуса сервис не выполняет: запуском сканирования
// занимается внешний движок, которого в этом репозитории нет.
const ScanStatusPending = "pending"

// Scan представляет собой основную модель запроса на сканирование,
// используемую в бизнес-логике и хранилище. Поле Results заполняется
// внешним движком и на момент создания всегда пусто.
type Scan struct {
	ID          string          `json:"id"`           // Уникальный идентификатор запроса
	OwnerUID    string          `json:"owner_uid"`    // Идентификатор пользователя-владельца
	TargetType  string          `json:"target_type"`  // Тип цели: domain или ip
	TargetValue string          `json:"target_value"` // Доменное имя либо IP-адрес
	Status      string          `json:"status"`       // Статус запроса
	Results     json.RawMessage `json:"results"`      // Результаты сканирования (пока не заполняются)
	CreatedAt   time.Time       `json:"created_at"`   // Дата создания, используется для сортировки
}

// DummyScan используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Scan. Значение цели валидируется
// отдельно в бизнес-логике.
type DummyScan struct {
	TargetType  string `json:"target_type" validate:"required,oneof=domain ip"` // Тип цели
	TargetValue string `json:"target_value" validate:"required"`                // Значение цели
}
