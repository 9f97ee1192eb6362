package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/sftp"
	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"gopkg.in/gomail.v2"

	"github.com/amflabs/stockpilot/internal/domain"
	"github.com/amflabs/stockpilot/internal/store"
	"github.com/amflabs/stockpilot/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedPruneActivityLogs()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	if a.appConfig.Backup.Enabled {
		_, err = a.sched.AddFunc("@daily", func() {
			a.SchedAutoBackup()
		})
		if err != nil {
			zap.S().Errorf("init job error %s", err.Error())
		}
	}

	a.sched.Start()
}

// SchedSystemMonitorTask records host gauges for the settings page.
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(cpuuse) > 0 {
		metrics.SetGauge(metrics.SystemCPUUse, int64(cpuuse[0]*100))
	}
	meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge(metrics.SystemMemUse, int64(meminfo.Used/1024/1024))
	}
}

// SchedPruneActivityLogs trims audit entries past the retention window.
func (a *Application) SchedPruneActivityLogs() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	days := a.appConfig.System.ActivityRetention
	if days <= 0 {
		days = 365
	}
	removed, err := a.dataStore.PruneActivityLogs(time.Now().Add(-time.Hour * 24 * time.Duration(days)))
	if err != nil {
		zap.L().Error("activity log pruning failed", zap.Error(err))
		return
	}
	if removed > 0 {
		zap.L().Info("pruned activity logs", zap.Int("removed", removed))
	}
}

// SchedAutoBackup writes an encrypted dump under the backup dir and
// uploads it over SFTP when a host is configured.
func (a *Application) SchedAutoBackup() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	cfg := a.appConfig.Backup
	if cfg.Passphrase == "" {
		zap.L().Warn("auto backup enabled but no passphrase configured, skipping")
		return
	}

	dump, err := a.dataStore.Dump()
	if err != nil {
		zap.L().Error("backup dump failed", zap.Error(err))
		return
	}
	blob, err := store.EncryptDump(dump, cfg.Passphrase)
	if err != nil {
		zap.L().Error("backup encryption failed", zap.Error(err))
		return
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		zap.L().Error("backup dir", zap.Error(err))
		return
	}
	filename := BackupFilename(time.Now())
	path := filepath.Join(cfg.Dir, filename)
	if err := os.WriteFile(path, blob, 0600); err != nil {
		zap.L().Error("backup write failed", zap.Error(err))
		return
	}
	zap.L().Info("auto backup written", zap.String("path", path))

	if cfg.SftpHost != "" {
		if err := a.uploadBackup(path, filename); err != nil {
			zap.L().Error("backup upload failed", zap.Error(err))
		}
	}
}

// BackupFilename follows the original export convention.
func BackupFilename(t time.Time) string {
	return fmt.Sprintf("stockpilot-backup-encrypted-%s.txt", t.Format("2006-01-02"))
}

func (a *Application) uploadBackup(localPath, filename string) error {
	cfg := a.appConfig.Backup
	addr := fmt.Sprintf("%s:%d", cfg.SftpHost, cfg.SftpPort)
	conn, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            cfg.SftpUser,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.SftpPasswd)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         15 * time.Second,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return err
	}
	defer client.Close()

	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	remote := filename
	if cfg.SftpDir != "" {
		remote = cfg.SftpDir + "/" + filename
	}
	f, err := client.Create(remote)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return err
	}
	zap.L().Info("backup uploaded", zap.String("remote", remote))
	return nil
}

// onStockChanged handles stock.changed events from the store and raises
// low-stock notifications.
func (a *Application) onStockChanged(p domain.Product) {
	threshold := a.appConfig.System.LowStockThreshold
	if threshold <= 0 || p.Stock > threshold {
		return
	}
	zap.L().Warn("low stock",
		zap.String("product", p.Name),
		zap.String("id", p.ID),
		zap.Int("stock", p.Stock))

	smtp := a.appConfig.Smtp
	if smtp.Host == "" || smtp.To == "" {
		return
	}
	m := gomail.NewMessage()
	m.SetHeader("From", smtp.From)
	m.SetHeader("To", smtp.To)
	m.SetHeader("Subject", fmt.Sprintf("Low stock alert: %s", p.Name))
	m.SetBody("text/plain", fmt.Sprintf(
		"Product %s (%s) is down to %d units, below the threshold of %d.",
		p.Name, p.ID, p.Stock, threshold))
	d := gomail.NewDialer(smtp.Host, smtp.Port, smtp.Username, smtp.Password)
	if err := d.DialAndSend(m); err != nil {
		zap.L().Error("low stock mail failed", zap.Error(err))
	}
}
