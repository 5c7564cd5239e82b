// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import "net/http"

// handleIndex serves the embedded chat page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

// indexHTML is the whole web surface: a chat pane and the paperclip
// that bounces around the viewport while a reply is pending.
const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width,initial-scale=1" />
  <title>Clippy Chat</title>
  <style>
    * { box-sizing: border-box; margin: 0; padding: 0; }
    body {
      font-family: "Segoe UI", Tahoma, sans-serif;
      background: linear-gradient(160deg, #008080, #004040);
      height: 100vh; display: flex; align-items: center; justify-content: center;
    }
    .window {
      width: min(640px, 92vw); height: min(80vh, 700px);
      background: #ece9d8; border: 2px solid #0a246a; border-radius: 8px 8px 4px 4px;
      display: flex; flex-direction: column; overflow: hidden;
      box-shadow: 4px 4px 18px rgba(0,0,0,.45);
    }
    .titlebar {
      background: linear-gradient(180deg, #0a246a, #3a6ea5);
      color: #fff; padding: 6px 10px; font-weight: 600; font-size: 14px;
      display: flex; justify-content: space-between; align-items: center;
    }
    .titlebar button {
      background: #ece9d8; border: 1px solid #888; border-radius: 3px;
      font-size: 12px; padding: 2px 8px; cursor: pointer;
    }
    #messages { flex: 1; overflow-y: auto; padding: 12px; display: flex; flex-direction: column; gap: 8px; }
    .msg { max-width: 80%; padding: 8px 12px; border-radius: 10px; font-size: 14px; white-space: pre-wrap; }
    .msg.user { align-self: flex-end; background: #d3e5fa; border: 1px solid #9ec2ea; }
    .msg.clippy { align-self: flex-start; background: #fffbd6; border: 1px solid #e0d890; }
    .msg.error { align-self: center; background: #fde3e3; border: 1px solid #e9a0a0; color: #7a1f1f; font-size: 13px; }
    form { display: flex; gap: 6px; padding: 10px; border-top: 1px solid #c9c5b2; background: #f4f2e8; }
    form input {
      flex: 1; padding: 8px 10px; font-size: 14px;
      border: 1px solid #7f9db9; border-radius: 3px;
    }
    form button {
      padding: 8px 16px; font-size: 14px; cursor: pointer;
      background: #ece9d8; border: 1px solid #888; border-radius: 3px;
    }
    form button:disabled { opacity: .5; cursor: default; }
    #clippy {
      position: fixed; left: 0; top: 0; font-size: 56px; display: none;
      filter: drop-shadow(2px 2px 3px rgba(0,0,0,.4));
      pointer-events: none; z-index: 10;
    }
  </style>
</head>
<body>
  <div class="window">
    <div class="titlebar">
      <span>📎 Clippy Chat</span>
      <button id="btnClear" type="button">Clear</button>
    </div>
    <div id="messages">
      <div class="msg clippy">Hi! It looks like you're trying to have a conversation. Would you like some help with that?</div>
    </div>
    <form id="chatForm">
      <input id="input" autocomplete="off" placeholder="Ask Clippy anything..." autofocus />
      <button id="btnSend" type="submit">Send</button>
    </form>
  </div>
  <div id="clippy">📎</div>

  <script>
    const messages = document.getElementById('messages');
    const form = document.getElementById('chatForm');
    const input = document.getElementById('input');
    const btnSend = document.getElementById('btnSend');
    const btnClear = document.getElementById('btnClear');
    const clippy = document.getElementById('clippy');

    let sessionId = '';
    let bounceTimer = null;
    let pos = { x: 40, y: 40, dx: 4, dy: 3 };

    function addMsg(text, cls) {
      const div = document.createElement('div');
      div.className = 'msg ' + cls;
      div.textContent = text;
      messages.appendChild(div);
      messages.scrollTop = messages.scrollHeight;
    }

    function startBounce() {
      clippy.style.display = 'block';
      bounceTimer = setInterval(() => {
        const maxX = window.innerWidth - 64;
        const maxY = window.innerHeight - 64;
        pos.x += pos.dx; pos.y += pos.dy;
        if (pos.x <= 0 || pos.x >= maxX) pos.dx = -pos.dx;
        if (pos.y <= 0 || pos.y >= maxY) pos.dy = -pos.dy;
        clippy.style.transform = 'translate(' + pos.x + 'px,' + pos.y + 'px)';
      }, 16);
    }

    function stopBounce() {
      clearInterval(bounceTimer);
      clippy.style.display = 'none';
    }

    form.addEventListener('submit', async (e) => {
      e.preventDefault();
      const text = input.value.trim();
      if (!text) return;
      addMsg(text, 'user');
      input.value = '';
      btnSend.disabled = true;
      startBounce();
      try {
        const res = await fetch('/api/chat', {
          method: 'POST',
          headers: { 'Content-Type': 'application/json' },
          body: JSON.stringify({ message: text, session_id: sessionId }),
        });
        const data = await res.json();
        if (!res.ok) {
          addMsg(data.error ? data.error.message : 'Something went wrong.', 'error');
        } else {
          sessionId = data.session_id;
          addMsg(data.response, 'clippy');
        }
      } catch (err) {
        addMsg('Could not reach the server.', 'error');
      } finally {
        stopBounce();
        btnSend.disabled = false;
        input.focus();
      }
    });

    btnClear.addEventListener('click', async () => {
      await fetch('/api/clear', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ session_id: sessionId }),
      }).catch(() => {});
      messages.innerHTML = '';
      addMsg("Fresh start! What would you like help with?", 'clippy');
    });
  </script>
</body>
</html>
`
