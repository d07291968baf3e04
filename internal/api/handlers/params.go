package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ErrInvalidID идентификатор в пути не является положительным числом
var ErrInvalidID = errors.New("handlers: invalid id")

// PathID положительный int64 из переменной маршрута
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// QueryDate дата YYYY-MM-DD из query-параметра
func QueryDate(r *http.Request, name string) (time.Time, error) {
	return time.Parse(domain.DateFormat, r.URL.Query().Get(name))
}
