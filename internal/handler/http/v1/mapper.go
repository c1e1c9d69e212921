package v1

import (
	"strings"

	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/shenikar/dispatch_orchestrator/internal/service"
)

// DTOToNewIncident преобразует запрос регистрации во входные данные приема
func DTOToNewIncident(dto CreateIncidentRequest) service.NewIncident {
	return service.NewIncident{
		Type:        dto.Type,
		Description: dto.Description,
		Location:    dto.Location,
		Latitude:    dto.Latitude,
		Longitude:   dto.Longitude,
		Priority:    models.Priority(strings.ToLower(dto.Priority)),
		CallID:      dto.CallID,
		Notes:       dto.Notes,
	}
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:               model.ID,
		Protocol:         model.Protocol,
		Type:             model.Type,
		Description:      model.Description,
		Location:         model.Location,
		Latitude:         model.Latitude,
		Longitude:        model.Longitude,
		Status:           string(model.Status),
		Priority:         string(model.Priority),
		DepartmentID:     model.DepartmentID,
		RegisteredAt:     model.RegisteredAt,
		ClosedAt:         model.ClosedAt,
		LastTransitionAt: model.LastTransitionAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func IntakeToResponse(result *service.IntakeResult) *IntakeResponse {
	return &IntakeResponse{
		Incident: ModelToIncidentResponse(result.Incident),
		Branch:   result.Branch,
		Dispatch: result.Dispatch,
		Homicide: result.Homicide,
	}
}

func DTOToUnitModel(dto RegisterUnitRequest) *models.Unit {
	return &models.Unit{
		Plate:        dto.Plate,
		CallSign:     dto.CallSign,
		Type:         dto.Type,
		Status:       models.UnitStatus(dto.Status),
		DepartmentID: dto.DepartmentID,
	}
}

func ModelToUnitResponse(model *models.Unit) *UnitResponse {
	return &UnitResponse{
		ID:           model.ID,
		Plate:        model.Plate,
		CallSign:     model.CallSign,
		Type:         model.Type,
		Status:       string(model.Status),
		DepartmentID: model.DepartmentID,
	}
}

// CandidatesToResponses - расстояние округляется до двух знаков
func CandidatesToResponses(candidates []service.Candidate) []*NearbyUnitResponse {
	responses := make([]*NearbyUnitResponse, len(candidates))
	for i, candidate := range candidates {
		responses[i] = &NearbyUnitResponse{
			Unit:       ModelToUnitResponse(candidate.Unit),
			Latitude:   candidate.Position.Latitude,
			Longitude:  candidate.Position.Longitude,
			DistanceKm: service.RoundKm(candidate.DistanceKm),
		}
	}
	return responses
}

func DTOToCallModel(dto RegisterCallRequest) *models.Call {
	call := &models.Call{
		CallerName:    dto.CallerName,
		CallerPhone:   dto.CallerPhone,
		CallerAddress: dto.CallerAddress,
		Notes:         dto.Notes,
	}
	if dto.ReceivedAt != nil {
		call.ReceivedAt = *dto.ReceivedAt
	}
	return call
}

func DTOToExternalCall(dto ExternalCallRequest) service.ExternalCall {
	input := service.ExternalCall{
		ExternalProtocol: dto.ExternalProtocol,
		SourceSystem:     dto.SourceSystem,
		IncidentType:     dto.IncidentType,
		Description:      dto.Description,
		Location:         dto.Location,
		Latitude:         dto.Latitude,
		Longitude:        dto.Longitude,
		Priority:         dto.Priority,
		CallerName:       dto.CallerName,
		CallerPhone:      dto.CallerPhone,
		Notes:            dto.Notes,
	}
	if dto.ReceivedAt != nil {
		input.ReceivedAt = *dto.ReceivedAt
	}
	return input
}

func ExternalResultToResponse(result *service.ExternalCallResult) *ExternalCallResponse {
	return &ExternalCallResponse{
		ExternalProtocol: result.ExternalProtocol,
		InternalProtocol: result.InternalProtocol,
		Call:             result.Call,
		Intake:           IntakeToResponse(result.Intake),
	}
}
