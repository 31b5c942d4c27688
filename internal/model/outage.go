package model

// 上游 OutageType 取值（其余值一律按全量 outage 处理）
const (
	OutageTypeReconfiguration = "Reconfiguration"
	OutageTypePartial         = "Partial"
)

// 目标 NewsType 取值
const (
	NewsTypeReconfiguration = "Reconfiguration"
	NewsTypeOutagePartial   = "Outage Partial"
	NewsTypeOutageFull      = "Outage Full"
)

// OutageRecord 上游 outages API 返回的原始记录（一条 = 一个受影响资源）。
// 时间字段保持上游原始字符串，入库映射时才解析，保证缓存文件可逐字节复现。
type OutageRecord struct {
	ID          string `json:"ID"`          // 上游标识，必须带 InputURNPrefix 才处理
	OutageID    string `json:"OutageID"`    // 上游分组键，同一逻辑 outage 内唯一
	ResourceID  string `json:"ResourceID"`  // 本条记录描述的资源
	OutageType  string `json:"OutageType"`  // Reconfiguration/Partial/其他
	Subject     string `json:"Subject"`     // 标题
	Content     string `json:"Content"`     // 正文
	OutageStart string `json:"OutageStart"` // 开始时间（上游格式）
	OutageEnd   string `json:"OutageEnd"`   // 结束时间（上游格式，可为空）
}

// MergedOutage 合并后的逻辑 outage（一轮处理内的中间对象，不直接落库）。
// 标量字段取组内首条记录，AffectedResources 按出现顺序累积且不去重。
type MergedOutage struct {
	URN               string
	OutageType        string
	Subject           string
	Content           string
	OutageStart       string
	OutageEnd         string
	AffectedResources []string
}
