package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/config"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/shenikar/dispatch_orchestrator/internal/webhook"
	"github.com/sirupsen/logrus"
)

// CoreOptions - необязательные зависимости ядра
type CoreOptions struct {
	Clock        Clock
	Classifier   Classifier
	TeamKeywords *TeamKeywords
	Cache        IncidentCache
}

// Core собирает сервисы ядра над общим набором хранилищ
type Core struct {
	Geo            *GeoService
	StateMachine   *StateMachine
	Dispatch       DispatchService
	Homicide       *HomicideService
	Flow           FlowService
	Reinforcements ReinforcementService
	Incidents      IncidentService
	Units          UnitService
	Calls          CallService
}

func NewCore(repos Repositories, publisher webhook.WebhookPublisher, cfg *config.Config, logger *logrus.Logger, opts CoreOptions) *Core {
	if opts.Clock == nil {
		opts.Clock = systemClock
	}
	if opts.Classifier == nil {
		opts.Classifier = DefaultClassifier()
	}
	keywords := DefaultTeamKeywords()
	if opts.TeamKeywords != nil {
		keywords = *opts.TeamKeywords
	}

	b := &base{
		repos:     repos,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		clock:     opts.Clock,
	}
	geo := NewGeoService(repos.Units, repos.Positions, logger)
	sm := NewStateMachine(repos, opts.Clock, logger)
	dispatch := &dispatchService{base: b, sm: sm, geo: geo}
	homicide := &HomicideService{base: b, geo: geo, dispatch: dispatch, keywords: keywords}
	flow := &flowService{base: b, sm: sm, geo: geo, dispatch: dispatch, homicide: homicide, classify: opts.Classifier}

	return &Core{
		Geo:            geo,
		StateMachine:   sm,
		Dispatch:       dispatch,
		Homicide:       homicide,
		Flow:           flow,
		Reinforcements: &reinforcementService{base: b, geo: geo, dispatch: dispatch},
		Incidents:      &incidentService{base: b, sm: sm, cache: opts.Cache},
		Units:          &unitService{base: b, geo: geo},
		Calls:          &callService{base: b, flow: flow},
	}
}

// base - общие зависимости сервисов ядра
type base struct {
	repos     Repositories
	publisher webhook.WebhookPublisher
	cfg       *config.Config
	logger    *logrus.Logger
	clock     Clock
}

// notify отправляет событие без подтверждения; ошибки только логируются
func (b *base) notify(ctx context.Context, log *logrus.Entry, eventType, topic string, payload any) {
	if b.publisher == nil {
		return
	}
	event := webhook.WebhookEvent{
		Type:      eventType,
		Topic:     topic,
		Payload:   payload,
		Timestamp: b.clock(),
	}
	if err := b.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).WithField("event", eventType).Warn("Failed to publish notification")
	}
}

// audit пишет запись бизнес-аудита; ошибка не прерывает основную операцию
func (b *base) audit(ctx context.Context, log *logrus.Entry, kind string, incidentID uuid.UUID, payload map[string]any) {
	if b.repos.Audit == nil {
		return
	}
	entry := &models.AuditEntry{
		Kind:    kind,
		Payload: payload,
		At:      b.clock(),
	}
	if incidentID != uuid.Nil {
		entry.IncidentID = &incidentID
	}
	if err := b.repos.Audit.Append(ctx, entry); err != nil {
		log.WithError(err).WithField("audit_kind", kind).Warn("Failed to write audit entry")
	}
}

// department возвращает подразделение по коду; отсутствие не ошибка (nil)
func (b *base) department(ctx context.Context, code string) (*models.Department, error) {
	department, err := b.repos.Departments.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return department, nil
}

// isHomicideDepartment сообщает, закреплен ли инцидент за отделом убийств
func (b *base) isHomicideDepartment(ctx context.Context, departmentID uuid.UUID) (bool, *models.Department, error) {
	homicide, err := b.department(ctx, b.cfg.HomicideDepartmentCode)
	if err != nil || homicide == nil {
		return false, nil, err
	}
	return departmentID == homicide.ID, homicide, nil
}

// standardPool - все экипажи, кроме отдела убийств
func (b *base) standardPool(ctx context.Context) (UnitPool, error) {
	homicide, err := b.department(ctx, b.cfg.HomicideDepartmentCode)
	if err != nil {
		return UnitPool{}, err
	}
	if homicide == nil {
		return UnitPool{}, nil
	}
	return UnitPool{ExcludeDepartmentID: homicide.ID}, nil
}
