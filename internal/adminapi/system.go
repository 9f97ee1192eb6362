package adminapi

import (
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/amflabs/stockpilot/internal/app"
	"github.com/amflabs/stockpilot/internal/webserver"
	"github.com/amflabs/stockpilot/pkg/metrics"
)

func registerSystemRoutes() {
	webserver.ApiGET("/status", serverStatus)
	webserver.ApiGET("/system/info", systemInfo)
	webserver.ApiGET("/system/metrics", systemMetrics)
}

func serverStatus(c echo.Context) error {
	return ok(c, map[string]interface{}{
		"status":  "up",
		"appid":   GetApp(c).Config().System.Appid,
		"version": app.Version,
		"time":    time.Now().Format(time.RFC3339),
	})
}

// systemInfo reports host facts for the settings page.
func systemInfo(c echo.Context) error {
	info := map[string]interface{}{
		"goVersion": runtime.Version(),
		"numCpu":    runtime.NumCPU(),
	}
	if hi, err := host.Info(); err == nil {
		info["hostname"] = hi.Hostname
		info["os"] = hi.OS
		info["platform"] = hi.Platform
		info["uptime"] = hi.Uptime
	}
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		info["cpuUsePercent"] = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info["memTotalMb"] = vm.Total / 1024 / 1024
		info["memUsedMb"] = vm.Used / 1024 / 1024
		info["memUsePercent"] = vm.UsedPercent
	}
	return ok(c, info)
}

// systemMetrics returns the last hour of collected system gauges.
func systemMetrics(c echo.Context) error {
	end := time.Now().Unix()
	start := end - 3600
	cpuUse, err := metrics.QueryRange(metrics.SystemCPUUse, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to query cpu series", err.Error())
	}
	memUse, err := metrics.QueryRange(metrics.SystemMemUse, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to query memory series", err.Error())
	}
	return ok(c, map[string]interface{}{
		"cpuUse": cpuUse,
		"memUse": memUse,
	})
}
