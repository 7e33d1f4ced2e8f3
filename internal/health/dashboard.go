package health

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RenderDashboardHTML returns the full HTML for the status page, with the
// current health snapshot embedded so the first paint needs no extra request.
func RenderDashboardHTML(health CollectResult) string {
	payload := map[string]interface{}{
		"status":       health.Status,
		"runtime":      health.Runtime,
		"traffic":      health.Traffic,
		"dependencies": health.Dependencies,
	}
	b, _ := json.Marshal(payload)
	jsonStr := string(b)
	// Escape for embedding in a JS template literal: \ ` $
	jsonStr = strings.ReplaceAll(jsonStr, "\\", "\\\\")
	jsonStr = strings.ReplaceAll(jsonStr, "`", "\\`")
	jsonStr = strings.ReplaceAll(jsonStr, "$", "\\$")

	headline := "All Systems Operational"
	if health.Status != "ok" {
		headline = "System Issues Detected"
	}
	avgTime := fmt.Sprint(health.Traffic.AvgResponseTime)

	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Brokwise Developer · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --brand: #1D4ED8; --ink: #0F172A; --bg: #F1F5F9; --muted: #64748b; --bad: #DC2626; }
    * { box-sizing: border-box; }
    body { background: var(--bg); color: var(--ink); font-family: system-ui, -apple-system, sans-serif; margin: 0; min-height: 100vh; display: flex; align-items: center; justify-content: center; padding: 32px 16px; }
    .wrap { width: 100%; max-width: 960px; }
    header { display: flex; justify-content: space-between; align-items: baseline; margin-bottom: 20px; }
    .brand { font-size: 20px; font-weight: 800; letter-spacing: -0.5px; color: var(--brand); }
    #time-display { font-size: 13px; font-weight: 600; color: var(--muted); }
    h1 { font-size: clamp(28px, 4vw, 44px); font-weight: 800; letter-spacing: -1.5px; margin: 0 0 24px; }
    h1.bad { color: var(--bad); }
    .card { background: #fff; border: 1px solid #E2E8F0; border-radius: 16px; overflow: hidden; box-shadow: 0 10px 30px -15px rgba(15, 23, 42, 0.15); }
    .grid { display: grid; grid-template-columns: repeat(3, 1fr); }
    .col { padding: 28px; border-right: 1px solid #F1F5F9; }
    .col:last-child { border-right: none; }
    .label { text-transform: uppercase; font-size: 11px; font-weight: 800; letter-spacing: 1.5px; color: #94a3b8; margin-bottom: 16px; }
    .big { font-size: 34px; font-weight: 800; letter-spacing: -1px; margin-bottom: 10px; }
    .row { display: flex; justify-content: space-between; padding: 7px 0; border-bottom: 1px solid #F8FAFC; font-size: 14px; font-weight: 600; }
    .row:last-child { border-bottom: none; }
    .pill { padding: 3px 10px; border-radius: 8px; font-size: 11px; font-weight: 800; }
    .ok { background: #EFF6FF; color: var(--brand); }
    .err { background: #FEF2F2; color: var(--bad); }
    .footer { padding: 14px 28px; display: flex; justify-content: space-between; font-family: monospace; font-size: 12px; border-top: 1px solid #F1F5F9; background: #F8FAFC; }
    .actions { margin-top: 20px; display: flex; gap: 12px; align-items: center; font-size: 13px; font-weight: 700; color: var(--muted); }
    button { background: #fff; color: var(--ink); border: 1px solid #CBD5E1; padding: 7px 16px; border-radius: 8px; cursor: pointer; font-weight: 700; font-size: 12px; }
    button:hover { background: #F1F5F9; }
    #error-modal { display: none; position: fixed; inset: 0; background: rgba(15, 23, 42, 0.45); z-index: 100; align-items: center; justify-content: center; padding: 20px; }
    .modal { background: #fff; width: 100%; max-width: 640px; border-radius: 16px; padding: 28px; max-height: 80vh; overflow-y: auto; }
    .error-item { border-bottom: 1px solid #F1F5F9; padding: 12px 0; font-size: 13px; }
    .err-meta { display: flex; gap: 10px; font-weight: 800; color: var(--brand); margin-bottom: 4px; text-transform: uppercase; font-size: 10px; }
    .err-msg { font-weight: 700; color: var(--bad); margin-bottom: 4px; }
    .err-stack { font-family: monospace; font-size: 11px; color: var(--muted); background: #F8FAFC; padding: 8px; border-radius: 6px; white-space: pre-wrap; }
    @media (max-width: 800px) { .grid { grid-template-columns: 1fr; } .col { border-right: none; border-bottom: 1px solid #F1F5F9; } .footer { flex-direction: column; gap: 6px; } }
  </style>
</head>
<body>
  <div id="error-modal" onclick="closeErrors(event)">
    <div class="modal" onclick="event.stopPropagation()">
      <div style="display:flex; justify-content:space-between; align-items:center; margin-bottom:18px;">
        <h2 style="margin:0; font-weight:800; font-size:18px;">Internal Server Errors (Last 50)</h2>
        <button onclick="closeErrors()">Close</button>
      </div>
      <div id="error-list">Loading...</div>
    </div>
  </div>
  <div class="wrap">
    <header>
      <div class="brand">Brokwise Developer</div>
      <span id="time-display"></span>
    </header>
    <h1 id="headline">` + headline + `</h1>
    <div class="card">
      <div class="grid">
        <div class="col">
          <div class="label">Traffic</div>
          <div class="big" id="total-req">` + fmt.Sprint(health.Traffic.TotalRequests) + `</div>
          <div class="row"><span>Successful</span><span id="success-count">` + fmt.Sprint(health.Traffic.SuccessCount) + `</span></div>
          <div class="row"><span>Failed</span><span id="failed-count">` + fmt.Sprint(health.Traffic.FailedCount) + `</span></div>
          <div class="row"><span>Success Rate</span><span id="success-rate">` + health.Traffic.SuccessRate + `%</span></div>
          <div class="row"><span>Avg Latency</span><span id="avg-time">` + avgTime + `ms</span></div>
        </div>
        <div class="col">
          <div class="label">Runtime</div>
          <div class="big" id="uptime">--h --m --s</div>
          <div class="row"><span>Heap Used</span><span id="mem-heap">` + fmt.Sprint(health.Runtime.Memory.HeapUsed) + ` MB</span></div>
          <div class="row"><span>Memory</span><span>` + fmt.Sprint(health.Runtime.Memory.RSS) + ` MB</span></div>
          <div class="row"><span>Platform</span><span style="font-size:11px">` + health.Runtime.Platform + `</span></div>
          <div class="row"><span>Go</span><span style="font-size:11px">` + health.Runtime.GoVersion + `</span></div>
        </div>
        <div class="col">
          <div class="label">Connectivity</div>
          <div class="row"><span>Database</span><span id="pill-db" class="pill ok"><span id="ping-db">-- ms</span></span></div>
          <div class="row"><span>Redis</span><span id="pill-redis" class="pill ok"><span id="ping-redis">-- ms</span></span></div>
          <div class="row"><span>Frontend</span><span id="pill-fe" class="pill ok"><span id="ping-fe">-- ms</span></span></div>
        </div>
      </div>
      <div class="footer">
        <div><span style="opacity:0.5; margin-right:8px;">LAST INBOUND</span> <span id="req-method" style="font-weight:800">-</span></div>
        <div id="req-path">-</div>
        <div id="req-ip" style="opacity:0.6">-</div>
      </div>
    </div>
    <div class="actions">
      <button onclick="showErrors()">View Error Log</button>
      <button onclick="tick()">Refresh</button>
      <span>Data refreshes on demand via /health/json</span>
    </div>
  </div>
  <script>
    const fmt = (s) => { const d = Math.floor(s / 86400); const h = Math.floor((s % 86400) / 3600); const m = Math.floor((s % 3600) / 60); const sec = Math.floor(s % 60); return d > 0 ? d + 'd ' + h + 'h ' + m + 'm' : h + 'h ' + m + 'm ' + sec + 's'; };
    const updateUI = (d) => {
      document.getElementById('time-display').innerText = new Date().toLocaleTimeString();
      document.getElementById('total-req').innerText = d.traffic.totalRequests;
      document.getElementById('success-count').innerText = d.traffic.successCount;
      document.getElementById('failed-count').innerText = d.traffic.failedCount;
      document.getElementById('success-rate').innerText = d.traffic.successRate + '%';
      document.getElementById('avg-time').innerText = d.traffic.avgResponseTime + 'ms';
      document.getElementById('uptime').innerText = fmt(d.runtime.uptimeSeconds);
      document.getElementById('mem-heap').innerText = d.runtime.memory.heapUsed + ' MB';
      if (d.traffic.lastRequest) { document.getElementById('req-method').innerText = d.traffic.lastRequest.method; document.getElementById('req-path').innerText = d.traffic.lastRequest.path; document.getElementById('req-ip').innerText = d.traffic.lastRequest.ip; }
      const setP = (id, dep) => { const pill = document.getElementById('pill-' + id); if (!dep) { pill.parentElement.style.display = 'none'; return; } const isOk = dep.status === 'connected' || dep.status === 'reachable'; pill.className = 'pill ' + (isOk ? 'ok' : 'err'); document.getElementById('ping-' + id).innerText = (dep.pingMs != null ? dep.pingMs : '?') + ' ms'; };
      setP('db', d.dependencies.database);
      setP('redis', d.dependencies.redis);
      setP('fe', d.dependencies.frontend);
      const hl = document.getElementById('headline');
      if (d.status === 'ok') { hl.innerText = 'All Systems Operational'; hl.className = ''; }
      else { hl.innerText = 'System Issues Detected'; hl.className = 'bad'; }
    };
    async function tick() { try { const r = await fetch('/health/json'); const d = await r.json(); updateUI(d); } catch(e){} }
    async function showErrors() { const modal = document.getElementById('error-modal'); const list = document.getElementById('error-list'); modal.style.display = 'flex'; list.innerHTML = 'Fetching logs...'; try { const r = await fetch('/health/errors'); const errors = await r.json(); if (errors.length === 0) { list.innerHTML = '<div style="text-align:center; padding:30px; color:var(--muted); font-weight:700;">No internal errors recorded.</div>'; return; } list.innerHTML = errors.map(e => '<div class="error-item"><div class="err-meta"><span>' + new Date(e.time).toLocaleString() + '</span> <span>' + (e.method||'') + ' ' + (e.path||'') + '</span></div><div class="err-msg">' + (e.message||'') + '</div>' + (e.stack ? '<div class="err-stack">' + e.stack + '</div>' : '') + '</div>').join(''); } catch (e) { list.innerHTML = 'Error loading logs.'; } }
    function closeErrors(ev) { document.getElementById('error-modal').style.display = 'none'; }
    updateUI(JSON.parse(` + "`" + jsonStr + "`" + `));
  </script>
</body>
</html>`
}
