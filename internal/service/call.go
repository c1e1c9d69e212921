package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/sirupsen/logrus"
)

// maxCallIncidents - предел инцидентов в карточке обращения
const maxCallIncidents = 100

// DefaultSourceSystem - система-источник внешнего вызова, если она не указана
const DefaultSourceSystem = "EXTERNAL_SYSTEM"

// externalIncidentTypes - коды типов внешних систем в типы инцидентов центра
var externalIncidentTypes = map[string]string{
	"ROBBERY":           "Assalto",
	"THEFT":             "Furto",
	"TRAFFIC_ACCIDENT":  "Acidente de Trânsito",
	"DOMESTIC_VIOLENCE": "Violência Doméstica",
	"HOMICIDE":          "Homicídio",
	"DRUG_TRAFFICKING":  "Tráfico de Drogas",
	"VANDALISM":         "Vandalismo",
	"DISTURBANCE":       "Perturbação da Ordem",
}

// ExternalCall - вызов, переданный внешней системой
type ExternalCall struct {
	ExternalProtocol string
	SourceSystem     string
	IncidentType     string
	Description      string
	Location         string
	Latitude         float64
	Longitude        float64
	Priority         string
	CallerName       string
	CallerPhone      string
	ReceivedAt       time.Time
	Notes            string
}

// ExternalCallResult - итог интеграции внешнего вызова
type ExternalCallResult struct {
	ExternalProtocol string        `json:"external_protocol"`
	InternalProtocol string        `json:"internal_protocol"`
	Call             *models.Call  `json:"call"`
	Intake           *IntakeResult `json:"intake"`
}

// ExternalBatchItem - результат одного вызова пакета
type ExternalBatchItem struct {
	ExternalProtocol string              `json:"external_protocol"`
	Result           *ExternalCallResult `json:"result,omitempty"`
	Error            string              `json:"error,omitempty"`
}

// ExternalBatchResult - сводка по пакету
type ExternalBatchResult struct {
	Total     int                 `json:"total"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Items     []ExternalBatchItem `json:"items"`
}

// CallDetails - обращение и порожденные им инциденты
type CallDetails struct {
	Call      *models.Call       `json:"call"`
	Incidents []*models.Incident `json:"incidents"`
}

// CallService определяет контракт центра приема вызовов
type CallService interface {
	RegisterCall(ctx context.Context, call *models.Call) error
	GetCall(ctx context.Context, id uuid.UUID) (*CallDetails, error)
	ListCalls(ctx context.Context, filter models.CallFilter) ([]*models.Call, error)
	ReceiveExternalCall(ctx context.Context, input ExternalCall) (*ExternalCallResult, error)
	ReceiveExternalBatch(ctx context.Context, inputs []ExternalCall) (*ExternalBatchResult, error)
}

type callService struct {
	*base
	flow FlowService
}

func (s *callService) RegisterCall(ctx context.Context, call *models.Call) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "call",
		"method":  "RegisterCall",
	})
	log.Info("Registering call")

	if strings.TrimSpace(call.CallerName) == "" && strings.TrimSpace(call.CallerPhone) == "" {
		return &ValidationError{Field: "caller", Reason: "name or phone is required"}
	}
	if call.ReceivedAt.IsZero() {
		call.ReceivedAt = s.clock()
	}
	if err := s.repos.Calls.Create(ctx, call); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			log.WithField("external_protocol", call.ExternalProtocol).Warn("Call already registered")
			return &PreconditionError{Reason: fmt.Sprintf("call %s from %s already registered", call.ExternalProtocol, call.SourceSystem)}
		}
		log.WithError(err).Error("Failed to create call in repository")
		return fmt.Errorf("service: could not create call: %w", err)
	}
	log.WithField("call_id", call.ID).Info("Call registered successfully")
	return nil
}

func (s *callService) GetCall(ctx context.Context, id uuid.UUID) (*CallDetails, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "call",
		"method":  "GetCall",
		"call_id": id,
	})

	call, err := s.repos.Calls.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Warn("Call not found")
			return nil, &NotFoundError{Entity: "call", ID: id.String()}
		}
		log.WithError(err).Error("Failed to get call in repository")
		return nil, fmt.Errorf("service: could not get call: %w", err)
	}
	incidents, err := s.repos.Incidents.List(ctx, models.IncidentFilter{CallID: &id, PageSize: maxCallIncidents})
	if err != nil {
		log.WithError(err).Error("Failed to list incidents of call")
		return nil, fmt.Errorf("service: could not list incidents of call: %w", err)
	}
	return &CallDetails{Call: call, Incidents: incidents}, nil
}

func (s *callService) ListCalls(ctx context.Context, filter models.CallFilter) ([]*models.Call, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, &ValidationError{Field: "from", Reason: "must not be after to"}
	}
	calls, err := s.repos.Calls.List(ctx, filter)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "call",
			"method":  "ListCalls",
		}).WithError(err).Error("Failed to list calls in repository")
		return nil, fmt.Errorf("service: could not list calls: %w", err)
	}
	return calls, nil
}

// ReceiveExternalCall регистрирует обращение внешней системы и запускает по нему обычный прием.
// Ошибка маршрутизации после регистрации возвращается вместе с результатом.
func (s *callService) ReceiveExternalCall(ctx context.Context, input ExternalCall) (*ExternalCallResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":           "call",
		"method":            "ReceiveExternalCall",
		"external_protocol": input.ExternalProtocol,
	})
	log.Info("Receiving external call")

	source := strings.TrimSpace(input.SourceSystem)
	if source == "" {
		source = DefaultSourceSystem
	}

	result, err := s.receiveExternal(ctx, log, input, source)
	if err != nil && result == nil {
		s.audit(ctx, log, "external_call_failed", uuid.Nil, map[string]any{
			"external_protocol": input.ExternalProtocol,
			"source_system":     source,
			"error":             err.Error(),
		})
		return nil, err
	}

	s.audit(ctx, log, "external_call_integrated", result.Intake.Incident.ID, map[string]any{
		"external_protocol": result.ExternalProtocol,
		"internal_protocol": result.InternalProtocol,
		"source_system":     source,
		"call_id":           result.Call.ID,
	})
	if err != nil {
		log.WithError(err).Warn("External call integrated but routing did not complete")
		return result, err
	}
	log.WithField("internal_protocol", result.InternalProtocol).Info("External call integrated successfully")
	return result, nil
}

func (s *callService) receiveExternal(ctx context.Context, log *logrus.Entry, input ExternalCall, source string) (*ExternalCallResult, error) {
	if err := validateExternalCall(input); err != nil {
		return nil, err
	}

	call := &models.Call{
		CallerName:       input.CallerName,
		CallerPhone:      input.CallerPhone,
		CallerAddress:    input.Location,
		ReceivedAt:       input.ReceivedAt,
		Notes:            input.Notes,
		SourceSystem:     source,
		ExternalProtocol: strings.TrimSpace(input.ExternalProtocol),
	}
	if call.ReceivedAt.IsZero() {
		call.ReceivedAt = s.clock()
	}
	if err := s.repos.Calls.Create(ctx, call); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			log.Warn("External call already integrated")
			return nil, &PreconditionError{Reason: fmt.Sprintf("external call %s from %s already integrated", call.ExternalProtocol, source)}
		}
		log.WithError(err).Error("Failed to create call in repository")
		return nil, fmt.Errorf("service: could not create call: %w", err)
	}

	callID := call.ID
	intake, err := s.flow.ProcessNewIncident(ctx, NewIncident{
		Type:        externalIncidentType(input.IncidentType),
		Description: input.Description,
		Location:    input.Location,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Priority:    externalPriority(input.Priority),
		CallID:      &callID,
		Notes:       input.Notes,
	})
	if intake == nil {
		return nil, err
	}
	return &ExternalCallResult{
		ExternalProtocol: call.ExternalProtocol,
		InternalProtocol: intake.Incident.Protocol,
		Call:             call,
		Intake:           intake,
	}, err
}

// ReceiveExternalBatch обрабатывает вызовы по очереди; ошибка одного не прерывает пакет
func (s *callService) ReceiveExternalBatch(ctx context.Context, inputs []ExternalCall) (*ExternalBatchResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "call",
		"method":  "ReceiveExternalBatch",
		"size":    len(inputs),
	})
	if len(inputs) == 0 {
		return nil, &ValidationError{Field: "calls", Reason: "must not be empty"}
	}

	batch := &ExternalBatchResult{Total: len(inputs), Items: make([]ExternalBatchItem, 0, len(inputs))}
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := ExternalBatchItem{ExternalProtocol: input.ExternalProtocol}
		result, err := s.ReceiveExternalCall(ctx, input)
		item.Result = result
		if err != nil {
			item.Error = err.Error()
		}
		// вызов с инцидентом считается принятым, даже если экипаж не направлен
		if result != nil {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
		batch.Items = append(batch.Items, item)
	}
	log.WithFields(logrus.Fields{"succeeded": batch.Succeeded, "failed": batch.Failed}).Info("External batch processed")
	return batch, nil
}

func validateExternalCall(input ExternalCall) error {
	required := []struct{ field, value string }{
		{"external_protocol", input.ExternalProtocol},
		{"incident_type", input.IncidentType},
		{"description", input.Description},
		{"location", input.Location},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Reason: "is required"}
		}
	}
	if input.Latitude < -90 || input.Latitude > 90 {
		return &ValidationError{Field: "latitude", Reason: "must be between -90 and 90"}
	}
	if input.Longitude < -180 || input.Longitude > 180 {
		return &ValidationError{Field: "longitude", Reason: "must be between -180 and 180"}
	}
	return nil
}

// externalIncidentType переводит код внешней системы; неизвестный код передается как есть
func externalIncidentType(code string) string {
	code = strings.TrimSpace(code)
	if mapped, ok := externalIncidentTypes[strings.ToUpper(code)]; ok {
		return mapped
	}
	return code
}

func externalPriority(value string) models.Priority {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "HIGH", "ALTA":
		return models.PriorityHigh
	case "LOW", "BAIXA":
		return models.PriorityLow
	default:
		return models.PriorityMedium
	}
}
