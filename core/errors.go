package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 引擎内部的所有可识别失败都使用此类型
//   - 提供错误代码（Code）和消息（Message），按 Code 做分支而不是错误字符串
//   - 可恢复错误（UNKNOWN_USER / UNKNOWN_MOVIE）触发冷启动兜底，不中断请求
//   - 结构性错误（NOT_FITTED / VALIDATION / INSUFFICIENT_DATA）直接上抛给调用方
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FITTED", "UNKNOWN_USER"）
	Message string // 错误消息
	Module  string // 模块名称（如 "feature", "model", "engine"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	// ErrorCodeValidation 输入不合法，调用方需修正后重试
	ErrorCodeValidation = "VALIDATION"
	// ErrorCodeNotFitted 模型尚未 fit，先调用 Fit 即可恢复
	ErrorCodeNotFitted = "NOT_FITTED"
	// ErrorCodeUnknownUser 用户无评分历史，预期内的非致命条件
	ErrorCodeUnknownUser = "UNKNOWN_USER"
	// ErrorCodeUnknownMovie 电影不在已 fit 的特征集合中，预期内的非致命条件
	ErrorCodeUnknownMovie = "UNKNOWN_MOVIE"
	// ErrorCodeInsufficientData fit 的数据量不足以产出有意义的模型
	ErrorCodeInsufficientData = "INSUFFICIENT_DATA"
	// ErrorCodeNotFound 存储层资源不存在
	ErrorCodeNotFound = "NOT_FOUND"
)

// 模块名称常量
const (
	ModuleFeature = "feature" // 特征模块
	ModuleModel   = "model"   // 隐因子模型模块
	ModuleEngine  = "engine"  // 混合引擎模块
	ModuleStore   = "store"   // 存储模块
)

// ErrStoreNotFound 是存储层的标准"不存在"错误，memory/redis 实现共用。
var ErrStoreNotFound = &DomainError{
	Module:  ModuleStore,
	Code:    ErrorCodeNotFound,
	Message: "key not found",
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsValidation 检查错误是否为 VALIDATION
func IsValidation(err error) bool { return hasCode(err, ErrorCodeValidation) }

// IsNotFitted 检查错误是否为 NOT_FITTED
func IsNotFitted(err error) bool { return hasCode(err, ErrorCodeNotFitted) }

// IsUnknownUser 检查错误是否为 UNKNOWN_USER
func IsUnknownUser(err error) bool { return hasCode(err, ErrorCodeUnknownUser) }

// IsUnknownMovie 检查错误是否为 UNKNOWN_MOVIE
func IsUnknownMovie(err error) bool { return hasCode(err, ErrorCodeUnknownMovie) }

// IsInsufficientData 检查错误是否为 INSUFFICIENT_DATA
func IsInsufficientData(err error) bool { return hasCode(err, ErrorCodeInsufficientData) }

// IsNotFound 检查错误是否为存储层 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }
