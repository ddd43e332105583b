package http

import (
	"strings"

	"github.com/tedsuo/rata"
)

const (
	ManagerName = "rendering-resource-manager"

	SessionPrefix = "session/"
	ConfigPrefix  = "config/"

	SchedulePath  = "schedule"
	StatusPath    = "status"
	LogPath       = "log"
	JobPath       = "job"
	ImageFeedPath = "imagefeed"

	RegistryPath = "registry"
	SchemaSuffix = "/schema"

	JobStatusPath = "resourceconnector/v1/status"
)

const (
	CreateSession    = "CreateSession"
	DeleteSession    = "DeleteSession"
	ScheduleSession  = "ScheduleSession"
	GetSessionStatus = "GetSessionStatus"
	GetSessionLog    = "GetSessionLog"
	GetSessionJob    = "GetSessionJob"
	GetImageFeed     = "GetImageFeed"
	ListSessions     = "ListSessions"
	SessionCommand   = "SessionCommand"

	CreateConfig = "CreateConfig"
	UpdateConfig = "UpdateConfig"
	ListConfigs  = "ListConfigs"
	DeleteConfig = "DeleteConfig"
)

// Routes are relative to the service URL. The trailing slash routes match
// every path below them, so the fixed session subpaths come first.
var Routes = rata.Routes{
	{Path: "/session/schedule", Method: "PUT", Name: ScheduleSession},
	{Path: "/session/status", Method: "GET", Name: GetSessionStatus},
	{Path: "/session/log", Method: "GET", Name: GetSessionLog},
	{Path: "/session/job", Method: "GET", Name: GetSessionJob},
	{Path: "/session/imagefeed", Method: "GET", Name: GetImageFeed},
	{Path: "/session/", Method: "POST", Name: CreateSession},
	{Path: "/session/", Method: "DELETE", Name: DeleteSession},
	{Path: "/session/", Method: "GET", Name: ListSessions},
	{Path: "/session/", Method: "PUT", Name: SessionCommand},

	{Path: "/config/", Method: "POST", Name: CreateConfig},
	{Path: "/config/", Method: "PUT", Name: UpdateConfig},
	{Path: "/config/", Method: "GET", Name: ListConfigs},
	{Path: "/config/", Method: "DELETE", Name: DeleteConfig},
}

// ServicePath is the path of the manager API below the allocator URL.
func ServicePath(apiVersion string) string {
	return "/" + ManagerName + "/" + apiVersion
}

func ServiceURL(allocatorURL, apiVersion string) string {
	return strings.TrimRight(allocatorURL, "/") + ServicePath(apiVersion)
}

func SessionURL(serviceURL string) string {
	return serviceURL + "/" + SessionPrefix
}

func ConfigURL(serviceURL string) string {
	return serviceURL + "/" + ConfigPrefix
}

func SchemaPath(objectName string) string {
	return objectName + SchemaSuffix
}
