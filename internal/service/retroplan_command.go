package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"stride/backend/internal/dto"
)

// ErrUnknownAction 不支持的动作名
var ErrUnknownAction = errors.New("未知的动作")

// 动作名
const (
	ActionGenerate     = "generate"
	ActionRegenerate   = "regenerate"
	ActionGet          = "get"
	ActionInvalidate   = "invalidate"
	ActionWeekCapacity = "week_capacity"
	ActionPredictions  = "predictions"
)

// Command 逆向规划命令。动作名只在 DecodeAction 中出现一次，之后全部按类型分派。
type Command interface {
	retroplanCommand()
}

// GenerateCommand 按显式参数生成
type GenerateCommand struct {
	OwnerID string
	Request dto.GenerateRetroplanRequest
}

// RegenerateCommand 按已保存的目标重新生成
type RegenerateCommand struct {
	OwnerID       string
	GoalID        string
	SimulatedDate string
}

// GetCommand 读取已缓存的计划
type GetCommand struct {
	OwnerID string
	GoalID  string
}

// InvalidateCommand 删除已缓存的计划
type InvalidateCommand struct {
	OwnerID string
	GoalID  string
}

// WeekCapacityCommand 单周产能预览
type WeekCapacityCommand struct {
	OwnerID string
	Query   dto.WeekCapacityQuery
}

// PredictionsCommand 低产能周预警
type PredictionsCommand struct {
	OwnerID string
	GoalID  string
	Query   dto.PredictionsQuery
}

func (GenerateCommand) retroplanCommand()     {}
func (RegenerateCommand) retroplanCommand()   {}
func (GetCommand) retroplanCommand()          {}
func (InvalidateCommand) retroplanCommand()   {}
func (WeekCapacityCommand) retroplanCommand() {}
func (PredictionsCommand) retroplanCommand()  {}

// DecodeAction 将 {"action", "payload"} 解码为强类型命令
func DecodeAction(action string, payload json.RawMessage, ownerID string) (Command, error) {
	switch action {
	case ActionGenerate:
		var req dto.GenerateRetroplanRequest
		if err := decodePayload(payload, &req); err != nil {
			return nil, err
		}
		return GenerateCommand{OwnerID: ownerID, Request: req}, nil

	case ActionRegenerate, ActionGet, ActionInvalidate:
		var ref dto.GoalRef
		if err := decodePayload(payload, &ref); err != nil {
			return nil, err
		}
		if ref.GoalID == "" {
			return nil, invalidInput("goal_id", "不能为空")
		}
		switch action {
		case ActionRegenerate:
			return RegenerateCommand{OwnerID: ownerID, GoalID: ref.GoalID, SimulatedDate: ref.SimulatedDate}, nil
		case ActionGet:
			return GetCommand{OwnerID: ownerID, GoalID: ref.GoalID}, nil
		default:
			return InvalidateCommand{OwnerID: ownerID, GoalID: ref.GoalID}, nil
		}

	case ActionWeekCapacity:
		var p dto.WeekCapacityPayload
		if err := decodePayload(payload, &p); err != nil {
			return nil, err
		}
		return WeekCapacityCommand{
			OwnerID: ownerID,
			Query:   dto.WeekCapacityQuery{Date: p.Date, HourlyRate: p.HourlyRate},
		}, nil

	case ActionPredictions:
		var p dto.PredictionsPayload
		if err := decodePayload(payload, &p); err != nil {
			return nil, err
		}
		if p.GoalID == "" {
			return nil, invalidInput("goal_id", "不能为空")
		}
		return PredictionsCommand{
			OwnerID: ownerID,
			GoalID:  p.GoalID,
			Query:   dto.PredictionsQuery{LookaheadWeeks: p.LookaheadWeeks, SimulatedDate: p.SimulatedDate},
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

func decodePayload(payload json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return invalidInput("payload", err.Error())
	}
	return nil
}

// Dispatch 执行命令。服务内部的 panic 在此恢复并转换为 ErrRetroplanInternal。
func Dispatch(ctx context.Context, svc RetroplanService, logger *zap.Logger, cmd Command) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("逆向规划命令执行异常",
				zap.String("command", fmt.Sprintf("%T", cmd)),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			result, err = nil, ErrRetroplanInternal
		}
	}()

	switch c := cmd.(type) {
	case GenerateCommand:
		return svc.Generate(ctx, &c.Request, c.OwnerID)
	case RegenerateCommand:
		return svc.Regenerate(ctx, c.GoalID, c.OwnerID, c.SimulatedDate)
	case GetCommand:
		return svc.Get(ctx, c.GoalID, c.OwnerID)
	case InvalidateCommand:
		if err := svc.Invalidate(ctx, c.GoalID, c.OwnerID); err != nil {
			return nil, err
		}
		return map[string]string{"goal_id": c.GoalID}, nil
	case WeekCapacityCommand:
		return svc.GetWeekCapacity(ctx, c.OwnerID, &c.Query)
	case PredictionsCommand:
		return svc.GetPredictions(ctx, c.GoalID, c.OwnerID, &c.Query)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownAction, cmd)
	}
}
