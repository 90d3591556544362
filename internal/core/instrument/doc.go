// Package instrument 提供 HTTP 请求插桩
//
// Transport 包装一个 http.RoundTripper，为每个请求产生两类信号：
//
//   - 请求结果 (req.URL.String(), resp.StatusCode)，送往 ErrorSink
//   - 传输样本（响应开始到响应体读完的耗时与字节数），在响应体关闭时送往 SampleSink
//
// 传输层错误（没有响应）不产生任何信号。
//
// # 使用示例
//
//	client := &http.Client{
//	    Transport: instrument.NewTransport(http.DefaultTransport,
//	        instrument.WithErrorSink(serviceMonitor),
//	        instrument.WithSampleSink(stabilityMonitor)),
//	}
package instrument
