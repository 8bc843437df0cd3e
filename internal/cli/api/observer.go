package api

import "time"

// RequestEvent описывает один завершённый запрос.
type RequestEvent struct {
	Path     string
	Method   string
	Status   int // 0, если ответа не было
	Duration time.Duration
	Err      error
}

// Observer получает событие после каждого запроса клиента.
type Observer interface {
	OnRequest(RequestEvent)
}

// ObserverFunc позволяет использовать функцию как Observer.
type ObserverFunc func(RequestEvent)

func (f ObserverFunc) OnRequest(ev RequestEvent) { f(ev) }
