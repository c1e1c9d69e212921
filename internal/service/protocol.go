package service

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// MaxProtocolSequence - последний номер, помещающийся в пять цифр протокола
const MaxProtocolSequence = 99999

// ErrProtocolExhausted - счетчик года вышел за пять цифр
var ErrProtocolExhausted = errors.New("protocol sequence exhausted for the year")

// FormatProtocol - OC-<год>-<последовательность из 5 цифр>
func FormatProtocol(year, sequence int) string {
	return fmt.Sprintf("OC-%04d-%05d", year, sequence)
}

// nextProtocol берет номер из атомарного счетчика года, а не из количества записей
func nextProtocol(ctx context.Context, incidents IncidentRepository, at time.Time) (string, error) {
	year := at.Year()
	sequence, err := incidents.NextProtocolSequence(ctx, year)
	if err != nil {
		return "", fmt.Errorf("service: could not allocate protocol sequence: %w", err)
	}
	if sequence < 1 || sequence > MaxProtocolSequence {
		return "", fmt.Errorf("service: sequence %d for %d: %w", sequence, year, ErrProtocolExhausted)
	}
	return FormatProtocol(year, sequence), nil
}
